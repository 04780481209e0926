// Package di provides dependency injection factories for creating application components.
package di

import (
	"psx_backend/internal/platform/externalapi/psx"
	infrahttp "psx_backend/internal/platform/http"
)

// NewMarket creates a fully configured PSXMarket with HTTP client.
func NewMarket() *psx.PSXMarket {
	cfg := psx.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return psx.NewPSXMarket(cfg, httpClient)
}
