package quota

import (
	"github.com/orgfolio/gatekeeper/internal/quota/service"
	"github.com/orgfolio/gatekeeper/internal/quota/store"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(store.NewRPCStore),
	fx.Provide(service.New),
)
