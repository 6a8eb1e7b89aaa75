package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/shopfloor-stats/backend/cmd/app/cli/rollup"
	"github.com/shopfloor-stats/backend/cmd/app/server"
	"github.com/shopfloor-stats/backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "shopfloor",
		Description: "Shop-floor production statistics backend. Built with Go, fiber, bun and go.uber.org/fx. Uses NATS JetStream for entry events and Redis for shared caches.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			rollup.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
