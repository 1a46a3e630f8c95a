package natal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

func positionsAt(longs map[string]float64) []domain.PlanetPosition {
	out := make([]domain.PlanetPosition, 0, len(longs))
	for _, p := range domain.DefaultPlanets() {
		if lon, ok := longs[p.Code]; ok {
			out = append(out, domain.PlanetPosition{PlanetCode: p.Code, Longitude: lon})
		}
	}
	return out
}

func TestComputeAspects_DefaultOrbs(t *testing.T) {
	positions := positionsAt(map[string]float64{
		"venus": 100,
		"mars":  160.5,
	})

	found := ComputeAspects(positions, domain.DefaultAspects())
	require.Len(t, found, 1)

	a := found[0]
	assert.Equal(t, "sextile", a.AspectCode)
	// пара канонизируется лексикографически
	assert.Equal(t, "mars", a.PlanetA)
	assert.Equal(t, "venus", a.PlanetB)
	assert.Equal(t, 60.0, a.Angle)
	assert.Equal(t, 0.5, a.Orb)
	assert.Equal(t, domain.DefaultOrbSextile, a.OrbUsed)
}

func TestComputeAspects_LuminaryOrb(t *testing.T) {
	lum := 7.0
	aspects := []domain.ReferenceAspect{
		{Code: "square", AngleDeg: 90, DefaultOrbDeg: 4, OrbLuminaries: &lum},
	}

	// орб 6.5 превышает дефолтные 4, но укладывается в орб светил
	positions := positionsAt(map[string]float64{
		"moon":  10,
		"venus": 106.5,
	})

	found := ComputeAspects(positions, aspects)
	require.Len(t, found, 1)
	assert.Equal(t, 6.5, found[0].Orb)
	assert.Equal(t, 7.0, found[0].OrbUsed)

	// пара без светила остаётся на дефолтном орбе
	positions = positionsAt(map[string]float64{
		"venus": 10,
		"mars":  106.5,
	})
	assert.Empty(t, ComputeAspects(positions, aspects))
}

func TestComputeAspects_PairOverrideWins(t *testing.T) {
	lum := 9.0
	aspects := []domain.ReferenceAspect{
		{
			Code:          "conjunction",
			AngleDeg:      0,
			DefaultOrbDeg: 8,
			OrbLuminaries: &lum,
			OrbOverrides:  map[string]float64{"mercury-sun": 2},
		},
	}

	// расстояние 3: переопределение пары (2) строже орба светил (9) и выигрывает
	positions := positionsAt(map[string]float64{
		"sun":     0,
		"mercury": 3,
	})
	assert.Empty(t, ComputeAspects(positions, aspects))

	// в пределах переопределения аспект есть и orb_used отражает его
	positions = positionsAt(map[string]float64{
		"sun":     0,
		"mercury": 1.5,
	})
	found := ComputeAspects(positions, aspects)
	require.Len(t, found, 1)
	assert.Equal(t, 2.0, found[0].OrbUsed)
}

func TestComputeAspects_WrapAround(t *testing.T) {
	// 357 и 3 в соединении через ноль Овна
	positions := positionsAt(map[string]float64{
		"sun":  357,
		"moon": 3,
	})

	found := ComputeAspects(positions, domain.DefaultAspects())
	require.Len(t, found, 1)
	assert.Equal(t, "conjunction", found[0].AspectCode)
	assert.Equal(t, 6.0, found[0].Orb)
}

func TestComputeAspects_SortedOutput(t *testing.T) {
	positions := positionsAt(map[string]float64{
		"sun":   0,
		"moon":  90,
		"venus": 180,
		"mars":  270,
	})

	found := ComputeAspects(positions, domain.DefaultAspects())
	require.NotEmpty(t, found)

	for i := 1; i < len(found); i++ {
		prev, cur := found[i-1], found[i]
		if prev.AspectCode != cur.AspectCode {
			assert.Less(t, prev.AspectCode, cur.AspectCode)
			continue
		}
		if prev.PlanetA != cur.PlanetA {
			assert.Less(t, prev.PlanetA, cur.PlanetA)
			continue
		}
		assert.Less(t, prev.PlanetB, cur.PlanetB)
	}
}

func TestCircularDistance(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{10, 350, 20},
		{350, 10, 20},
		{0, 180, 180},
		{90, 270, 180},
		{359, 1, 2},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, circularDistance(tt.a, tt.b), 1e-9)
	}
}
