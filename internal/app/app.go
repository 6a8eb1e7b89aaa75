package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/app/appcontext"
	"github.com/shopfloor-stats/backend/internal/controller"
	"github.com/shopfloor-stats/backend/internal/infra"
	"github.com/shopfloor-stats/backend/internal/model/cache"
	"github.com/shopfloor-stats/backend/internal/pkg/logger"
	"github.com/shopfloor-stats/backend/internal/repo"
	"github.com/shopfloor-stats/backend/internal/server"
	"github.com/shopfloor-stats/backend/internal/service"
	"github.com/shopfloor-stats/backend/internal/workers/eventwkr"
	"github.com/shopfloor-stats/backend/internal/workers/warmwkr"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	return append(Graph(conf), additionalOpts...)
}

// Graph is the fx graph for an already parsed configuration.
func Graph(conf *appconfig.Config, extra ...fx.Option) []fx.Option {
	opts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits: Keep those before controllers to ensure they are initialized
		// before controllers are registered as controllers are also fx#Invoke functions which
		// are called in the order of their registration.
		fx.Invoke(cache.Initialize),
	}

	if conf.AppContext.ServesHTTP() {
		opts = append(opts,
			// Servers
			server.Module(),

			// Controllers
			controller.Module(),

			// Workers
			fx.Invoke(eventwkr.Start),
			fx.Invoke(warmwkr.Start),
		)
	}

	opts = append(opts,
		// fx Extra Options
		fx.StartTimeout(5*time.Second),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5*time.Minute),
	)

	return append(opts, extra...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
