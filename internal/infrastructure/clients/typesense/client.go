package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
	"github.com/zatekoja/businesstrust/backend/pkg/retry"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a Typesense client and waits for the server to report healthy
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(context.Background(), retry.DefaultConfig(), "Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			healthy, err := client.Health(ctx, 2*time.Second)
			if err != nil {
				return err
			}
			if !healthy {
				return fmt.Errorf("typesense reported unhealthy")
			}
			return nil
		},
		func(attempt int, err error, wait time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("Typesense not reachable yet")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("Connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}
