package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dafibh/ledger/internal/config"
	"github.com/dafibh/ledger/internal/console"
	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/export"
	"github.com/dafibh/ledger/internal/service"
	"github.com/dafibh/ledger/internal/session"
	"github.com/dafibh/ledger/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logs go to stderr so they stay out of the menu
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(config.ConsoleDefaults)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer gateway.Close()

	// The menu blocks on stdin, so a signal ends the process from here
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
		gateway.Close()
		os.Exit(130)
	}()

	// Pick up changes made by other processes sharing the store
	go func() {
		if err := gateway.Watch(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Stopped watching record store")
		}
	}()

	var exporter console.Exporter
	s3Exporter, err := export.NewS3Exporter(ctx, cfg.S3)
	switch {
	case err == nil:
		exporter = s3Exporter
	case errors.Is(err, domain.ErrExportDisabled):
		log.Debug().Msg("Export disabled")
	default:
		log.Warn().Err(err).Msg("Export unavailable")
	}

	menu := console.New(os.Stdin, os.Stdout,
		session.New(gateway),
		service.NewLedgerService(gateway),
		service.NewCategoryService(gateway),
		exporter,
	)
	if err := menu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Ledger stopped")
		gateway.Close()
		os.Exit(1)
	}
}
