package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboardKeyCovers(t *testing.T) {
	key := DashboardKey("2024-03-01", "2024-03-07")

	assert.True(t, DashboardKeyCovers(key, "2024-03-01"))
	assert.True(t, DashboardKeyCovers(key, "2024-03-04"))
	assert.True(t, DashboardKeyCovers(key, "2024-03-07"))
	assert.False(t, DashboardKeyCovers(key, "2024-02-29"))
	assert.False(t, DashboardKeyCovers(key, "2024-03-08"))

	// unknown key shapes are always invalidated
	assert.True(t, DashboardKeyCovers("legacy", "2024-03-08"))
}
