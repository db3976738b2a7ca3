package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Distance(40.7128, -74.0060, 40.7128, -74.0060))
}

func TestDistanceSymmetric(t *testing.T) {
	d1 := Distance(40.7128, -74.0060, 34.0522, -118.2437)
	d2 := Distance(34.0522, -118.2437, 40.7128, -74.0060)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceKnownValue(t *testing.T) {
	// New York to Los Angeles is roughly 3936 km
	d := Distance(40.7128, -74.0060, 34.0522, -118.2437)
	assert.InDelta(t, 3936, d, 50)
}

func TestDistanceShortRange(t *testing.T) {
	// One degree of latitude is about 111 km
	d := Distance(52.0, 13.0, 53.0, 13.0)
	assert.InDelta(t, 111.2, d, 1.0)
}

func TestDistanceBetweenMissingPoint(t *testing.T) {
	p := &Point{Lat: 40.0, Lon: -70.0}

	_, ok := DistanceBetween(nil, p)
	assert.False(t, ok)

	_, ok = DistanceBetween(p, nil)
	assert.False(t, ok)

	d, ok := DistanceBetween(p, &Point{Lat: 40.0, Lon: -70.0})
	assert.True(t, ok)
	assert.Equal(t, 0.0, d)
}

func TestDistanceAntipodal(t *testing.T) {
	// Half the earth's circumference, no NaN or panic
	d := Distance(0, 0, 0, 180)
	assert.InDelta(t, 20015, d, 50)
}
