package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/agrivalor/equipment-valuation/pkg/config"
	"github.com/agrivalor/equipment-valuation/pkg/retry"
)

const (
	// AuctionSalesCollection holds one document per historical auction sale.
	AuctionSalesCollection = "auction_sales"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client, verifying connectivity with
// exponential backoff before handing it out.
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.Do(context.Background(), retry.DefaultConfig(), func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := client.Health(ctx, 2*time.Second)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the auction sales collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == AuctionSalesCollection {
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: AuctionSalesCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				// Raw listing text; the retriever re-parses it so every
				// backend feeds the pipeline the same fragment shape.
				Name: "source_text",
				Type: "string",
			},
			{
				Name:  "make",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:  "model",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:     "year",
				Type:     "int32",
				Optional: pointer.True(),
			},
			{
				Name: "price",
				Type: "float",
			},
			{
				Name: "sale_date",
				Type: "int64",
			},
			{
				Name:     "hours",
				Type:     "float",
				Optional: pointer.True(),
			},
			{
				Name:     "auction_company",
				Type:     "string",
				Optional: pointer.True(),
			},
		},
		DefaultSortingField: pointer.String("sale_date"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", AuctionSalesCollection).Msg("created Typesense collection")
	return nil
}
