package main

import (
	"github.com/shopfloor-stats/backend/cmd/app"
)

func main() {
	app.Run()
}
