package client

import (
	"github.com/taxdesk/taxdesk/internal/client/repository"
	"github.com/taxdesk/taxdesk/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
