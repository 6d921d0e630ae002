package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/geo"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	t.Parallel()

	p := geo.Point{Lat: -12.0464, Lng: -77.0428}
	require.Equal(t, 0.0, geo.DistanceKm(p, p))
}

func TestDistanceKmKnownPair(t *testing.T) {
	t.Parallel()

	// Plaza Mayor de Lima to Miraflores is roughly 8.5 km in a straight line.
	plaza := geo.Point{Lat: -12.0464, Lng: -77.0428}
	miraflores := geo.Point{Lat: -12.1211, Lng: -77.0297}
	d := geo.DistanceKm(plaza, miraflores)
	require.InDelta(t, 8.44, d, 0.2)
}

func TestDistanceKmSymmetric(t *testing.T) {
	t.Parallel()

	a := geo.Point{Lat: -12.05, Lng: -77.03}
	b := geo.Point{Lat: -11.95, Lng: -76.95}
	require.InDelta(t, geo.DistanceKm(a, b), geo.DistanceKm(b, a), 1e-9)
}

func TestDistanceKmPropagatesNaN(t *testing.T) {
	t.Parallel()

	a := geo.Point{Lat: math.NaN(), Lng: -77.0}
	b := geo.Point{Lat: -12.0, Lng: -77.0}
	require.True(t, math.IsNaN(geo.DistanceKm(a, b)))
}

func TestPointValid(t *testing.T) {
	t.Parallel()

	require.True(t, geo.Point{Lat: -12.0464, Lng: -77.0428}.Valid())
	require.False(t, geo.Point{Lat: math.NaN(), Lng: 0}.Valid())
	require.False(t, geo.Point{Lat: 91, Lng: 0}.Valid())
	require.False(t, geo.Point{Lat: 0, Lng: -181}.Valid())
	require.False(t, geo.Point{Lat: math.Inf(1), Lng: 0}.Valid())
}
