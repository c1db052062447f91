package tablestore

import (
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rs/zerolog/log"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// isLocal reports whether serviceURL points at a local emulator (plain http)
func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	log.Info().Msg("Using default Azure credentials for table service")
	return azidentity.NewDefaultAzureCredential(nil)
}
