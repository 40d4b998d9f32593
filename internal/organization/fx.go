package organization

import (
	"github.com/taxdesk/taxdesk/internal/organization/repository"
	"github.com/taxdesk/taxdesk/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
