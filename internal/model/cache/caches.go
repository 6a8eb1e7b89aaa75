package cache

import (
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/pkg/cache"
)

var (
	Products      *cache.Singular[[]*model.Product]
	Machines      *cache.Singular[[]*model.Machine]
	Operators     *cache.Singular[[]*model.Operator]
	DowntimeTypes *cache.Singular[[]*model.DowntimeType]
	Sectors       *cache.Singular[[]*model.Sector]
	WorkShifts    *cache.Singular[[]*model.WorkShift]

	// Dashboards is keyed by DashboardKey.
	Dashboards *cache.Set[model.Dashboard]

	once sync.Once
)

// Initialize creates the cache instances. Calls after the first are no-ops.
func Initialize(client *redis.Client) {
	once.Do(func() {
		Products = cache.NewSingular[[]*model.Product]("products")
		Machines = cache.NewSingular[[]*model.Machine]("machines")
		Operators = cache.NewSingular[[]*model.Operator]("operators")
		DowntimeTypes = cache.NewSingular[[]*model.DowntimeType]("downtimeTypes")
		Sectors = cache.NewSingular[[]*model.Sector]("sectors")
		WorkShifts = cache.NewSingular[[]*model.WorkShift]("workShifts")

		Dashboards = cache.NewSet[model.Dashboard](client, "shopfloor:dashboard#start|end")
	})
}

func DashboardKey(start, end string) string {
	return start + "|" + end
}

// DashboardKeyCovers reports whether the range of a dashboard key includes date. Dates are
// compared as YYYY-MM-DD strings.
func DashboardKeyCovers(key, date string) bool {
	if len(key) != 2*len(constant.DateLayout)+1 {
		return true
	}
	start, end := key[:len(constant.DateLayout)], key[len(constant.DateLayout)+1:]
	return start <= date && date <= end
}
