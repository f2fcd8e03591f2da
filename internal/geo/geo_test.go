package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{37.50, 127.03},
		{0, 0},
		{-33.86, 151.20},
	}

	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p[0], p[1], p[0], p[1]))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	d1 := Distance(37.50, 127.03, 35.17, 129.07)
	d2 := Distance(35.17, 129.07, 37.50, 127.03)

	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistance_KnownValues(t *testing.T) {
	// Seoul to Busan, roughly 325 km as the crow flies.
	d := Distance(37.5665, 126.9780, 35.1796, 129.0756)
	assert.InDelta(t, 325, d, 5)

	// ~0.1 km for a 0.001 degree longitude step at lat 37.5.
	d = Distance(37.50, 127.03, 37.50, 127.031)
	assert.InDelta(t, 0.1, d, 0.02)
}
