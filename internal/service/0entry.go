package service

import (
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/pkg/latest"
)

func Module() fx.Option {
	opts := []fx.Option{
		fx.Provide(
			latest.New,
			NewEntry,
			NewHealth,
			NewDashboard,
			NewReference,
			NewEntryEvents,
		),
	}
	return fx.Module("service", opts...)
}
