package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
)

// Factory resolves a fully-resolved credential to a concrete API client.
// Services take a Factory so tests can substitute doubles.
type Factory func(cred config.ProviderCredential, logger *zap.Logger) (Client, error)

// New creates the API client for the credential's provider code. The set
// of providers is closed; an unknown code is an error.
func New(cred config.ProviderCredential, logger *zap.Logger) (Client, error) {
	switch cred.Code {
	case domain.ProviderPrintify:
		return newPrintifyClient(cred, logger)
	case domain.ProviderGelato:
		return newGelatoClient(cred, logger)
	case domain.ProviderPrintful:
		return newPrintfulClient(cred, logger)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cred.Code)
	}
}
