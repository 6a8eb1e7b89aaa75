package repo

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	opts := []fx.Option{
		fx.Provide(
			NewEntry,
			NewProduct,
			NewMachine,
			NewOperator,
			NewDowntimeType,
			NewSector,
			NewWorkShift,
			NewMaterialMovement,
		),
	}
	return fx.Module("repo", opts...)
}
