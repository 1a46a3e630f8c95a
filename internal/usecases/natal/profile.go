package natal

import (
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// BuildProfile строит пользовательский астропрофиль из результата.
// Политика неизвестного времени: без birth_time Асцендент и куспиды
// домов в профиль не попадают, флаг missing_birth_time выставлен.
// Планеты при этом остаются валидными с пониженной точностью.
func BuildProfile(result *domain.NatalResult, signs []domain.ReferenceSign) *domain.AstroProfile {
	profile := &domain.AstroProfile{
		Planets:          result.PlanetPositions,
		Aspects:          result.Aspects,
		MissingBirthTime: result.MissingBirthTime,
	}

	for _, p := range result.PlanetPositions {
		switch p.PlanetCode {
		case "sun":
			profile.SunSign = p.SignCode
		case "moon":
			profile.MoonSign = p.SignCode
		}
	}

	if result.MissingBirthTime {
		return profile
	}

	profile.Houses = result.Houses
	if result.Ascendant != nil {
		ascSign := domain.SignForLongitude(*result.Ascendant, signs)
		profile.AscendantSign = &ascSign
	}

	return profile
}
