package entitlement

import (
	"github.com/orgfolio/gatekeeper/internal/entitlement/policy"
	"github.com/orgfolio/gatekeeper/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(policy.NewRPCSource),
	fx.Provide(policy.NewOverrideSource),
	fx.Provide(policy.NewPlanSource),
	fx.Provide(service.New),
)
