package cli

import (
	"context"

	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/app"
	"github.com/shopfloor-stats/backend/internal/app/appcontext"
)

// Start builds the graph without HTTP or workers, runs its start hooks and returns a stop func.
func Start(module fx.Option) (func(), error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := a.Start(context.Background()); err != nil {
		return nil, err
	}
	return func() {
		_ = a.Stop(context.Background())
	}, nil
}
