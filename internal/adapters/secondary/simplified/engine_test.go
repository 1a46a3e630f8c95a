package simplified

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

const jdJ2000 = 2451545.0

func newTestEngine() *Engine {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCalculatePlanets_Sanity(t *testing.T) {
	engine := newTestEngine()

	positions, err := engine.CalculatePlanets(jdJ2000, ephemeris.CalcOptions{})
	require.NoError(t, err)
	require.Len(t, positions, 10)

	for _, p := range positions {
		assert.GreaterOrEqual(t, p.Longitude, 0.0, p.PlanetCode)
		assert.Less(t, p.Longitude, 360.0, p.PlanetCode)
	}

	// долгота Солнца на эпоху J2000 около 280.5 градуса
	assert.Equal(t, "sun", positions[0].PlanetCode)
	assert.InDelta(t, 280.5, positions[0].Longitude, 2.0)

	// Солнце не бывает ретроградным
	assert.False(t, positions[0].IsRetrograde)
	assert.InDelta(t, 1.0, positions[0].SpeedLongitude, 0.1)
}

func TestCalculatePlanets_SiderealShift(t *testing.T) {
	engine := newTestEngine()

	tropical, err := engine.CalculatePlanets(jdJ2000, ephemeris.CalcOptions{Zodiac: domain.ZodiacTropical})
	require.NoError(t, err)
	sidereal, err := engine.CalculatePlanets(jdJ2000, ephemeris.CalcOptions{Zodiac: domain.ZodiacSidereal})
	require.NoError(t, err)

	// аянамса Лахири на 2000 год около 23.9 градуса
	shift := math.Mod(tropical[0].Longitude-sidereal[0].Longitude+360.0, 360.0)
	assert.InDelta(t, 23.9, shift, 1.0)
}

func TestCalculatePlanets_TopocentricRequiresCoordinates(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.CalculatePlanets(jdJ2000, ephemeris.CalcOptions{Frame: domain.FrameTopocentric})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeEphemerisCalcFailed, domain.ErrorCode(err))
}

func TestCalculateHouses_EqualAndWholeSign(t *testing.T) {
	engine := newTestEngine()

	equal, err := engine.CalculateHouses(jdJ2000, 48.8588897, 2.320041, domain.HouseSystemEqual, ephemeris.CalcOptions{})
	require.NoError(t, err)
	require.Len(t, equal.Houses, 12)

	assert.InDelta(t, equal.AscendantLongitude, equal.Houses[0].CuspLongitude, 1e-9)
	for i := 1; i < 12; i++ {
		gap := math.Mod(equal.Houses[i].CuspLongitude-equal.Houses[i-1].CuspLongitude+360.0, 360.0)
		assert.InDelta(t, 30.0, gap, 1e-9)
	}

	whole, err := engine.CalculateHouses(jdJ2000, 48.8588897, 2.320041, domain.HouseSystemWholeSign, ephemeris.CalcOptions{})
	require.NoError(t, err)
	// первый куспид whole_sign лежит на границе знака
	assert.InDelta(t, 0.0, math.Mod(whole.Houses[0].CuspLongitude, 30.0), 1e-9)
}

func TestCalculateHouses_PlacidusUnavailable(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.CalculateHouses(jdJ2000, 48.85, 2.32, domain.HouseSystemPlacidus, ephemeris.CalcOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeUnsupportedHouseSystem, domain.ErrorCode(err))
}
