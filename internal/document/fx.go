package document

import (
	"github.com/taxdesk/taxdesk/internal/document/repository"
	"github.com/taxdesk/taxdesk/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
