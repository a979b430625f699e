package utils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carpark-aggregator/internal/pkg/utils"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("distance to self is zero", func(t *testing.T) {
		d := utils.HaversineDistance(22.3193, 114.1694, 22.3193, 114.1694)
		assert.Equal(t, 0.0, d)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		d1 := utils.HaversineDistance(22.3193, 114.1694, 22.2783, 114.1747)
		d2 := utils.HaversineDistance(22.2783, 114.1747, 22.3193, 114.1694)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("central to tsim sha tsui is a few kilometers", func(t *testing.T) {
		// Central (22.2783, 114.1747) -> Tsim Sha Tsui (22.2976, 114.1722)
		d := utils.HaversineDistance(22.2783, 114.1747, 22.2976, 114.1722)
		assert.Greater(t, d, 1.5)
		assert.Less(t, d, 3.0)
	})
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		lng   float64
		valid bool
	}{
		{"hong kong", 22.3193, 114.1694, true},
		{"boundary north pole", 90, 0, true},
		{"boundary date line", 0, 180, true},
		{"latitude too large", 90.01, 0, false},
		{"longitude too small", 0, -180.01, false},
		{"nan latitude", math.NaN(), 114.1694, false},
		{"infinite longitude", 22.3193, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, utils.ValidateCoordinates(tt.lat, tt.lng))
		})
	}
}

func TestValidateRadius(t *testing.T) {
	assert.True(t, utils.ValidateRadius(0.1))
	assert.True(t, utils.ValidateRadius(100))
	assert.False(t, utils.ValidateRadius(0.05))
	assert.False(t, utils.ValidateRadius(100.5))
	assert.False(t, utils.ValidateRadius(-1))
}
