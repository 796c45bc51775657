package organization

import (
	"github.com/orgfolio/gatekeeper/internal/organization/repository"
	"github.com/orgfolio/gatekeeper/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
