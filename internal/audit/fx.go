package audit

import (
	"github.com/orgfolio/gatekeeper/internal/audit/repository"
	"github.com/orgfolio/gatekeeper/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
