package natal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
	"github.com/daconrilcy/horoscope-front-sub002/internal/repository/memory"
	"github.com/daconrilcy/horoscope-front-sub002/internal/usecases/reference"
)

// fakeEngine детерминированный движок для тестов оркестратора
type fakeEngine struct {
	longitudes  map[string]float64
	asc, mc     float64
	unsupported map[string]bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		longitudes: map[string]float64{
			"sun":     34.0817569,
			"moon":    289.3256361,
			"mercury": 10.3694115,
			"venus":   83.2,
			"mars":    150.4,
			"jupiter": 290.1,
			"saturn":  95.7,
			"uranus":  200.3,
			"neptune": 265.9,
			"pluto":   182.6,
		},
		asc: 117.9631694,
		mc:  5.0250079,
	}
}

func (e *fakeEngine) Name() string { return "swisseph" }

func (e *fakeEngine) CalculatePlanets(jdUT float64, opts ephemeris.CalcOptions) ([]domain.PlanetPosition, error) {
	out := make([]domain.PlanetPosition, 0, len(e.longitudes))
	for _, p := range domain.DefaultPlanets() {
		out = append(out, domain.PlanetPosition{
			PlanetCode: p.Code,
			Longitude:  e.longitudes[p.Code],
		})
	}
	return out, nil
}

func (e *fakeEngine) CalculateHouses(jdUT float64, lat, lon float64, houseSystem string, opts ephemeris.CalcOptions) (*domain.HouseSet, error) {
	if e.unsupported[houseSystem] {
		return nil, domain.NewEngineError(domain.ErrCodeUnsupportedHouseSystem, "house system not supported").
			WithDetail("house_system", houseSystem)
	}

	set := &domain.HouseSet{
		AscendantLongitude: e.asc,
		MCLongitude:        e.mc,
		HouseSystem:        houseSystem,
	}
	for i := 0; i < 12; i++ {
		set.Houses = append(set.Houses, domain.House{
			Number:        i + 1,
			CuspLongitude: math.Mod(e.asc+float64(i)*30.0, 360.0),
		})
	}
	return set, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, engine ephemeris.IEngine) *Service {
	t.Helper()

	refRepo := memory.NewReferenceRepo()
	refService := reference.New(refRepo, "1.0.0", testLogger())
	require.NoError(t, refService.Seed(context.Background(), "1.0.0"))

	return New(refService, engine, memory.NewChartRepo(), nil, nil, &Config{}, testLogger())
}

func parisInput() domain.BirthInput {
	return domain.BirthInput{
		BirthDate:     "1973-04-24",
		BirthTime:     strPtr("11:00"),
		BirthPlace:    "Paris, France",
		BirthTimezone: "Europe/Paris",
		BirthLat:      floatPtr(48.8588897),
		BirthLon:      floatPtr(2.320041),
	}
}

func TestCalculateNatal_FullChart(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	result, err := svc.CalculateNatal(context.Background(), parisInput(), "")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", result.ReferenceVersion)
	assert.Equal(t, "1.0.0", result.RulesetVersion)
	assert.Equal(t, "swisseph", result.Engine)
	assert.Equal(t, domain.HouseSystemPlacidus, result.HouseSystem)
	assert.False(t, result.MissingBirthTime)

	require.Len(t, result.PlanetPositions, 10)
	bySign := make(map[string]string)
	for _, p := range result.PlanetPositions {
		bySign[p.PlanetCode] = p.SignCode
	}
	assert.Equal(t, "taurus", bySign["sun"])
	assert.Equal(t, "capricorn", bySign["moon"])
	assert.Equal(t, "aries", bySign["mercury"])

	require.Len(t, result.Houses, 12)
	require.NotNil(t, result.Ascendant)
	require.NotNil(t, result.MC)
	assert.InDelta(t, 117.963169, *result.Ascendant, 1e-6)
	assert.InDelta(t, 5.025008, *result.MC, 1e-6)

	assert.NotEmpty(t, result.Aspects)
}

func TestCalculateNatal_NoCoordinates(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	input := parisInput()
	input.BirthLat = nil
	input.BirthLon = nil

	result, err := svc.CalculateNatal(context.Background(), input, "")
	require.NoError(t, err)

	assert.Empty(t, result.Houses)
	assert.Nil(t, result.Ascendant)
	assert.Nil(t, result.MC)
	assert.Len(t, result.PlanetPositions, 10)
}

func TestCalculateNatal_UnknownReferenceVersion(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	_, err := svc.CalculateNatal(context.Background(), parisInput(), "9.9.9")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeReferenceVersionNotFound, domain.ErrorCode(err))
}

func TestCalculateNatal_ContextCancelled(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CalculateNatal(ctx, parisInput(), "")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeNatalTimeout, domain.ErrorCode(err))
}

func TestCalculateNatalChecked_BudgetExceeded(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	calls := 0
	check := func() error {
		calls++
		if calls >= 3 {
			return domain.NewEngineError(domain.ErrCodeNatalTimeout, "natal calculation budget exceeded")
		}
		return nil
	}

	_, err := svc.CalculateNatalChecked(context.Background(), parisInput(), "", check)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeNatalTimeout, domain.ErrorCode(err))
	assert.Equal(t, 3, calls)
}

func TestCalculateNatal_HouseFallbackToEqual(t *testing.T) {
	engine := newFakeEngine()
	engine.unsupported = map[string]bool{domain.HouseSystemPlacidus: true}

	svc := newTestService(t, engine)

	result, err := svc.CalculateNatal(context.Background(), parisInput(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.HouseSystemEqual, result.HouseSystem)
	assert.Len(t, result.Houses, 12)
}

func TestPersistTrace_RepeatedRuns(t *testing.T) {
	svc := newTestService(t, newFakeEngine())
	ctx := context.Background()
	input := parisInput()

	result, err := svc.CalculateNatal(ctx, input, "")
	require.NoError(t, err)

	firstID, err := svc.PersistTrace(ctx, input, result, nil)
	require.NoError(t, err)
	secondID, err := svc.PersistTrace(ctx, input, result, nil)
	require.NoError(t, err)

	// каждый прогон получает свой chart_id, но отпечаток и payload совпадают
	assert.NotEqual(t, firstID, secondID)

	first, err := svc.GetAuditRecord(ctx, firstID)
	require.NoError(t, err)
	second, err := svc.GetAuditRecord(ctx, secondID)
	require.NoError(t, err)

	assert.Equal(t, first.InputHash, second.InputHash)
	assert.JSONEq(t, string(first.ResultPayload), string(second.ResultPayload))
	assert.Equal(t, "1.0.0", first.ReferenceVersion)

	var stored domain.NatalResult
	require.NoError(t, json.Unmarshal(first.ResultPayload, &stored))
	assert.Equal(t, result.ReferenceVersion, stored.ReferenceVersion)
	assert.Equal(t, len(result.PlanetPositions), len(stored.PlanetPositions))
}

func TestGetAuditRecord_InvalidID(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	_, err := svc.GetAuditRecord(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeChartResultNotFound, domain.ErrorCode(err))
}

func TestBuildProfile_MissingBirthTime(t *testing.T) {
	svc := newTestService(t, newFakeEngine())
	ctx := context.Background()

	input := parisInput()
	input.BirthTime = nil

	result, err := svc.CalculateNatal(ctx, input, "")
	require.NoError(t, err)
	assert.True(t, result.MissingBirthTime)

	snapshot, err := svc.RefService.GetActive(ctx, "")
	require.NoError(t, err)

	profile := BuildProfile(result, snapshot.Signs)
	assert.Equal(t, "taurus", profile.SunSign)
	assert.Equal(t, "capricorn", profile.MoonSign)
	assert.True(t, profile.MissingBirthTime)
	// без времени рождения Асцендент и дома в профиль не попадают
	assert.Nil(t, profile.AscendantSign)
	assert.Empty(t, profile.Houses)
	assert.NotEmpty(t, profile.Planets)
}

func TestBuildProfile_WithBirthTime(t *testing.T) {
	svc := newTestService(t, newFakeEngine())
	ctx := context.Background()

	result, err := svc.CalculateNatal(ctx, parisInput(), "")
	require.NoError(t, err)

	snapshot, err := svc.RefService.GetActive(ctx, "")
	require.NoError(t, err)

	profile := BuildProfile(result, snapshot.Signs)
	require.NotNil(t, profile.AscendantSign)
	assert.Equal(t, "cancer", *profile.AscendantSign) // 117.96 градусов
	assert.Len(t, profile.Houses, 12)
}

// fakeCache мапа вместо redis для тестов кэширования
type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.values[key]
	return ok, nil
}

func (c *fakeCache) Close() error { return nil }

func TestLookupCached_RoundTrip(t *testing.T) {
	svc := newTestService(t, newFakeEngine())
	svc.Cache = newFakeCache()
	ctx := context.Background()
	input := parisInput()

	// до первой записи кэш пуст
	_, hit := svc.LookupCached(ctx, input, "")
	assert.False(t, hit)

	result, err := svc.CalculateNatal(ctx, input, "")
	require.NoError(t, err)

	_, err = svc.PersistTrace(ctx, input, result, nil)
	require.NoError(t, err)

	cached, hit := svc.LookupCached(ctx, input, "")
	require.True(t, hit)
	require.NotNil(t, cached)
	assert.Equal(t, result.ReferenceVersion, cached.ReferenceVersion)
	assert.Len(t, cached.PlanetPositions, len(result.PlanetPositions))
	require.NotNil(t, cached.Ascendant)
	assert.InDelta(t, *result.Ascendant, *cached.Ascendant, 1e-9)
}

func TestLookupCached_NilCache(t *testing.T) {
	svc := newTestService(t, newFakeEngine())

	_, hit := svc.LookupCached(context.Background(), parisInput(), "")
	assert.False(t, hit)
}
