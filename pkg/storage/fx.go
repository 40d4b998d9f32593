package storage

import (
	"context"

	"github.com/taxdesk/taxdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(func(cfg config.Config, log *zap.Logger) (*Client, error) {
		return New(context.Background(), cfg.Storage, log.Named("storage"))
	}),
	fx.Provide(func(c *Client) ObjectStore { return c }),
)
