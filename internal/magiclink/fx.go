package magiclink

import (
	"github.com/taxdesk/taxdesk/internal/magiclink/repository"
	"github.com/taxdesk/taxdesk/internal/magiclink/service"
	"go.uber.org/fx"
)

var Module = fx.Module("magiclink.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
