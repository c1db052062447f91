package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/util"
	"github.com/dafibh/ledger/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	feed           *websocket.Feed
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
	now            func() time.Time
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(feed *websocket.Feed, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		feed:           feed,
		allowedOrigins: originMap,
		now:            time.Now,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws?period=MM-YYYY.
// Without a period the client watches the current month.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	period, err := h.queryPeriod(c)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid period")
		return NewValidationError(c, "Invalid period", []ValidationError{
			{Field: "period", Message: "Period must be MM-YYYY and not in a future year"},
		})
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, period, h.feed)

	// The request context ends with the handler, the subscription outlives it
	if err := h.feed.Join(context.Background(), client); err != nil {
		log.Error().Err(err).Str("period", period.String()).Msg("Failed to watch period")
		client.Close()
		return nil
	}

	log.Info().
		Str("period", period.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

func (h *WebSocketHandler) queryPeriod(c echo.Context) (domain.Period, error) {
	raw := c.QueryParam("period")
	if raw == "" {
		return util.CurrentPeriod(h.now()), nil
	}
	return util.ParsePeriodAt(raw, h.now())
}
