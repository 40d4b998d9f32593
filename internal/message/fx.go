package message

import (
	"github.com/taxdesk/taxdesk/internal/message/repository"
	"github.com/taxdesk/taxdesk/internal/message/service"
	"go.uber.org/fx"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
