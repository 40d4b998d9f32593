package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/audit"
	"github.com/taxdesk/taxdesk/internal/auth"
	"github.com/taxdesk/taxdesk/internal/cache"
	"github.com/taxdesk/taxdesk/internal/client"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/config"
	"github.com/taxdesk/taxdesk/internal/document"
	"github.com/taxdesk/taxdesk/internal/magiclink"
	"github.com/taxdesk/taxdesk/internal/message"
	"github.com/taxdesk/taxdesk/internal/migration"
	"github.com/taxdesk/taxdesk/internal/observability"
	"github.com/taxdesk/taxdesk/internal/organization"
	"github.com/taxdesk/taxdesk/internal/ratelimit"
	"github.com/taxdesk/taxdesk/internal/seed"
	"github.com/taxdesk/taxdesk/internal/server"
	"github.com/taxdesk/taxdesk/internal/taxcase"
	"github.com/taxdesk/taxdesk/pkg/db"
	"github.com/taxdesk/taxdesk/pkg/storage"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		organization.Module,
		client.Module,
		taxcase.Module,
		magiclink.Module,
		document.Module,
		message.Module,
		auth.Module,
		audit.Module,
		cache.Module,
		ratelimit.Module,
		storage.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
