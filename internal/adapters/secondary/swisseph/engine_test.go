package swisseph

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

// fakeNative записывает вызовы нативной библиотеки в порядке выполнения
type fakeNative struct {
	calls []string

	failCalc   bool
	failHouses bool
}

func (f *fakeNative) CalcUT(jdUT float64, planet int, flags int, result []float64, serr []byte) int32 {
	f.calls = append(f.calls, fmt.Sprintf("calc:%d", planet))
	if f.failCalc {
		copy(serr, []byte("ephemeris file not found\x00"))
		return seErr
	}
	result[0] = 400.0 + float64(planet) // нормализуется в [0,360)
	result[1] = 1.5
	result[3] = 0.9
	if planet == seMercury {
		result[3] = -1.2
	}
	return 0
}

func (f *fakeNative) Houses(jdUT float64, lat, lon float64, hsys int, cusps, ascmc []float64) int32 {
	f.calls = append(f.calls, fmt.Sprintf("houses:%c", hsys))
	if f.failHouses {
		return seErr
	}
	for i := 1; i <= 12; i++ {
		cusps[i] = float64(i * 30)
	}
	cusps[12] = -30 // нормализуется в 330
	ascmc[ascmcAscendant] = 117.9631694
	ascmc[ascmcMC] = 365.0250079
	return 0
}

func (f *fakeNative) SetSidMode(mode int32, t0, ayanT0 float64) {
	f.calls = append(f.calls, fmt.Sprintf("sidmode:%d", mode))
}

func (f *fakeNative) SetTopo(lon, lat, altitude float64) {
	f.calls = append(f.calls, fmt.Sprintf("topo:%v,%v", lon, lat))
}

func (f *fakeNative) SetEphePath(path string) {
	f.calls = append(f.calls, "ephepath")
}

func (f *fakeNative) Close() {
	f.calls = append(f.calls, "close")
}

func newTestEngine(native nativeAPI) *Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newWithNative(native, &Config{EphePath: "/ephe"}, log)
}

func TestCalculatePlanets_TropicalGeocentric(t *testing.T) {
	native := &fakeNative{}
	engine := newTestEngine(native)

	positions, err := engine.CalculatePlanets(2448057.85, ephemeris.CalcOptions{
		Zodiac: domain.ZodiacTropical,
		Frame:  domain.FrameGeocentric,
	})
	require.NoError(t, err)
	require.Len(t, positions, 10)

	// порядок объявления Sun..Pluto
	assert.Equal(t, "sun", positions[0].PlanetCode)
	assert.Equal(t, "pluto", positions[9].PlanetCode)

	// долгота нормализована к [0,360)
	assert.InDelta(t, 40.0, positions[0].Longitude, 1e-9)

	// ретроградность следует из отрицательной скорости
	assert.True(t, positions[2].IsRetrograde)
	assert.False(t, positions[0].IsRetrograde)

	// тропический геоцентрический режим не трогает глобальное состояние
	for _, call := range native.calls {
		assert.NotContains(t, call, "sidmode")
		assert.NotContains(t, call, "topo")
	}
}

func TestCalculatePlanets_RestoresGlobalsAfterSuccess(t *testing.T) {
	native := &fakeNative{}
	engine := newTestEngine(native)

	lat, lon := 48.85, 2.32
	_, err := engine.CalculatePlanets(2448057.85, ephemeris.CalcOptions{
		Zodiac: domain.ZodiacSidereal,
		Frame:  domain.FrameTopocentric,
		Lat:    &lat,
		Lon:    &lon,
	})
	require.NoError(t, err)

	// установка режимов до расчёта, сброс в нейтраль после
	require.GreaterOrEqual(t, len(native.calls), 4)
	assert.Equal(t, fmt.Sprintf("sidmode:%d", sidmLahiri), native.calls[0])
	assert.Equal(t, "topo:2.32,48.85", native.calls[1])
	assert.Equal(t, "sidmode:0", native.calls[len(native.calls)-2])
	assert.Equal(t, "topo:0,0", native.calls[len(native.calls)-1])
}

func TestCalculatePlanets_RestoresGlobalsAfterFailure(t *testing.T) {
	native := &fakeNative{failCalc: true}
	engine := newTestEngine(native)

	_, err := engine.CalculatePlanets(2448057.85, ephemeris.CalcOptions{
		Zodiac: domain.ZodiacSidereal,
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeEphemerisCalcFailed, domain.ErrorCode(err))

	// нейтральное состояние восстановлено и на пути ошибки
	assert.Equal(t, "sidmode:0", native.calls[len(native.calls)-2])
	assert.Equal(t, "topo:0,0", native.calls[len(native.calls)-1])

	calcFailures, _ := engine.Metrics()
	assert.Equal(t, int64(1), calcFailures)
}

func TestCalculatePlanets_TopocentricRequiresCoordinates(t *testing.T) {
	native := &fakeNative{}
	engine := newTestEngine(native)

	_, err := engine.CalculatePlanets(2448057.85, ephemeris.CalcOptions{
		Frame: domain.FrameTopocentric,
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeEphemerisCalcFailed, domain.ErrorCode(err))

	// до нативных расчётов дело не дошло
	for _, call := range native.calls {
		assert.NotContains(t, call, "calc:")
	}
}

func TestCalculatePlanets_UnknownAyanamsa(t *testing.T) {
	engine := newTestEngine(&fakeNative{})

	_, err := engine.CalculatePlanets(2448057.85, ephemeris.CalcOptions{
		Zodiac:   domain.ZodiacSidereal,
		Ayanamsa: "unknown",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeEphemerisCalcFailed, domain.ErrorCode(err))
}

func TestCalculateHouses_Success(t *testing.T) {
	native := &fakeNative{}
	engine := newTestEngine(native)

	set, err := engine.CalculateHouses(2448057.85, 48.85, 2.32, domain.HouseSystemPlacidus, ephemeris.CalcOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.HouseSystemPlacidus, set.HouseSystem)
	require.Len(t, set.Houses, 12)
	assert.Equal(t, 1, set.Houses[0].Number)
	assert.InDelta(t, 30.0, set.Houses[0].CuspLongitude, 1e-9)
	// тринадцатый слот нативного массива используется как куспид 12 и нормализуется
	assert.InDelta(t, 330.0, set.Houses[11].CuspLongitude, 1e-9)

	assert.InDelta(t, 117.9631694, set.AscendantLongitude, 1e-9)
	assert.InDelta(t, 5.0250079, set.MCLongitude, 1e-6)

	assert.Contains(t, native.calls, "houses:P")
}

func TestCalculateHouses_UnsupportedSystem(t *testing.T) {
	native := &fakeNative{}
	engine := newTestEngine(native)

	_, err := engine.CalculateHouses(2448057.85, 48.85, 2.32, "koch", ephemeris.CalcOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeUnsupportedHouseSystem, domain.ErrorCode(err))
	assert.Empty(t, native.calls)
}

func TestCalculateHouses_NativeFailure(t *testing.T) {
	native := &fakeNative{failHouses: true}
	engine := newTestEngine(native)

	_, err := engine.CalculateHouses(2448057.85, 48.85, 2.32, domain.HouseSystemEqual, ephemeris.CalcOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeHousesCalcFailed, domain.ErrorCode(err))

	_, housesFailures := engine.Metrics()
	assert.Equal(t, int64(1), housesFailures)
}

func TestCuspsFromNative_TwelveElements(t *testing.T) {
	cusps := make([]float64, 12)
	for i := range cusps {
		cusps[i] = float64(i) * 30
	}

	houses, err := cuspsFromNative(cusps)
	require.NoError(t, err)
	require.Len(t, houses, 12)
	assert.Equal(t, 1, houses[0].Number)
	assert.InDelta(t, 0.0, houses[0].CuspLongitude, 1e-9)
	assert.InDelta(t, 330.0, houses[11].CuspLongitude, 1e-9)

	_, err = cuspsFromNative(make([]float64, 7))
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeHousesCalcFailed, domain.ErrorCode(err))
}

func TestNormalizeLongitude(t *testing.T) {
	assert.InDelta(t, 40.0, normalizeLongitude(400), 1e-9)
	assert.InDelta(t, 350.0, normalizeLongitude(-10), 1e-9)
	assert.InDelta(t, 0.0, normalizeLongitude(720), 1e-9)
	assert.InDelta(t, 5.025, normalizeLongitude(365.025), 1e-9)
}
