package taxcase

import (
	"github.com/taxdesk/taxdesk/internal/taxcase/repository"
	"github.com/taxdesk/taxdesk/internal/taxcase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxcase.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
