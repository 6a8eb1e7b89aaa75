package rollup

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "github.com/shopfloor-stats/backend/cmd/app/cli"
	"github.com/shopfloor-stats/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	DashboardService *service.Dashboard
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "rollup",
		Usage:       "print the dashboard of a date range as JSON",
		Description: "computes the dashboard straight from the database, bypassing the shared cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "first date, YYYY-MM-DD", Required: true},
			&cli.StringFlag{Name: "end", Usage: "last date, YYYY-MM-DD", Required: true},
			&cli.BoolFlag{Name: "pretty", Usage: "indent the output"},
		},
		Action: func(c *cli.Context) error {
			var deps CommandDeps
			stop, err := cliapp.Start(fx.Populate(&deps))
			if err != nil {
				return errors.Wrap(err, "failed to start app")
			}
			defer stop()

			return run(c, deps)
		},
	}
}

func run(c *cli.Context, deps CommandDeps) error {
	start, end := c.String("start"), c.String("end")
	log.Info().Str("start", start).Str("end", end).Msg("computing dashboard")

	from, to, err := service.ParseRange(start, end)
	if err != nil {
		return err
	}
	ctx, cancel := deps.DashboardService.WithQueryTimeout(c.Context)
	defer cancel()

	d, err := deps.DashboardService.Build(ctx, from, to)
	if err != nil {
		return errors.Wrap(err, "failed to compute dashboard")
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(d)
}
