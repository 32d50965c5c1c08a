package fx

import (
	"ranked-profile/internal/api"
	"ranked-profile/internal/config"
	"ranked-profile/internal/logger"
	"ranked-profile/internal/service"
	"ranked-profile/internal/tier"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(tier.New),
	// api client
	fx.Provide(
		fx.Annotate(api.NewClient, fx.As(new(service.Fetcher))),
	),
	// svc
	fx.Provide(service.NewProfileService),
)
