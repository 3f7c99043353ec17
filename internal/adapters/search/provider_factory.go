package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/clients/openai"
	tsclient "github.com/agrivalor/equipment-valuation/internal/infrastructure/clients/typesense"
	"github.com/agrivalor/equipment-valuation/pkg/config"
)

// NewSaleSearchProvider constructs the configured search backend.
func NewSaleSearchProvider(cfg *config.Config) (providers.SaleSearchProvider, error) {
	switch cfg.Search.Provider {
	case "openai":
		client, err := openai.NewClient(&cfg.OpenAI, cfg.Search.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI search provider: %w", err)
		}
		return NewOpenAIAdapter(client, cfg.Search.MaxResults), nil

	case "typesense":
		client, err := tsclient.NewClient(&cfg.Typesense)
		if err != nil {
			return nil, fmt.Errorf("failed to create Typesense search provider: %w", err)
		}
		if err := client.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		return NewTypesenseAdapter(client, cfg.Search.MaxResults), nil

	case "mock":
		log.Warn().Msg("using mock sale search provider; valuations are based on fixture data")
		return NewMockAdapter(), nil

	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}
