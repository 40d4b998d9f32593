package audit

import (
	"github.com/taxdesk/taxdesk/internal/audit/repository"
	"github.com/taxdesk/taxdesk/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
