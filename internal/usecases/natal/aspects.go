package natal

import (
	"math"
	"sort"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// ComputeAspects находит мажорные аспекты между всеми неупорядоченными
// парами планет. Орб выбирается по строгому приоритету: явное
// переопределение пары, затем орб светил, затем орб аспекта по умолчанию.
// Выход отсортирован по (aspect_code, planet_a, planet_b).
func ComputeAspects(positions []domain.PlanetPosition, aspects []domain.ReferenceAspect) []domain.Aspect {
	found := make([]domain.Aspect, 0)

	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			a, b := positions[i], positions[j]
			planetA, planetB := a.PlanetCode, b.PlanetCode
			if planetB < planetA {
				planetA, planetB = planetB, planetA
			}

			distance := circularDistance(a.Longitude, b.Longitude)

			for _, def := range aspects {
				orb := math.Abs(distance - def.AngleDeg)
				orbUsed := resolveOrb(def, a.PlanetCode, b.PlanetCode)
				if orb > orbUsed {
					continue
				}

				found = append(found, domain.Aspect{
					AspectCode: def.Code,
					PlanetA:    planetA,
					PlanetB:    planetB,
					Angle:      round6(def.AngleDeg),
					Orb:        round6(orb),
					OrbUsed:    round6(orbUsed),
				})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].AspectCode != found[j].AspectCode {
			return found[i].AspectCode < found[j].AspectCode
		}
		if found[i].PlanetA != found[j].PlanetA {
			return found[i].PlanetA < found[j].PlanetA
		}
		return found[i].PlanetB < found[j].PlanetB
	})

	return found
}

// resolveOrb строгий приоритет выбора орба:
// переопределение пары > орб светил > орб по умолчанию
func resolveOrb(def domain.ReferenceAspect, planetA, planetB string) float64 {
	if len(def.OrbOverrides) > 0 {
		if orb, ok := def.OrbOverrides[domain.PairKey(planetA, planetB)]; ok {
			return orb
		}
	}
	if def.OrbLuminaries != nil && (domain.IsLuminary(planetA) || domain.IsLuminary(planetB)) {
		return *def.OrbLuminaries
	}
	if def.DefaultOrbDeg > 0 {
		return def.DefaultOrbDeg
	}
	return domain.DefaultOrbFor(def.Code)
}

// circularDistance угловое расстояние двух долгот в [0, 180]
func circularDistance(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360.0)
	return math.Min(diff, 360.0-diff)
}

// round6 округление до шести знаков для стабильного равенства в результатах
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
