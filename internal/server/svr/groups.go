package svr

import (
	"github.com/gofiber/fiber/v2"
)

// V1 serves the entry, group, dashboard and reference endpoints.
type V1 struct {
	fiber.Router
}

// Meta serves health and build information. It sits outside /api so that probes skip the
// API middlewares.
type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App) (*V1, *Meta) {
	v1 := app.Group("/api/v1")
	meta := app.Group("/_")

	return &V1{Router: v1}, &Meta{Router: meta}
}
