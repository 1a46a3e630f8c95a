package natal

import (
	"context"
	"errors"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

// TimeoutCheck кооперативная проверка бюджета, вызывается между крупными
// шагами оркестратора. Возврат ошибки прерывает расчёт.
type TimeoutCheck func() error

// CalculateNatal полный расчёт натальной карты для входа рождения.
// Пустая referenceVersion означает версию справочника по умолчанию.
func (s *Service) CalculateNatal(ctx context.Context, input domain.BirthInput, referenceVersion string) (*domain.NatalResult, error) {
	return s.CalculateNatalChecked(ctx, input, referenceVersion, s.defaultTimeoutCheck(ctx))
}

// CalculateNatalChecked расчёт с внешней проверкой бюджета.
// Проверка вызывается между шагами: разрешение справочника, подготовка
// времени, планеты, дома, аспекты.
func (s *Service) CalculateNatalChecked(ctx context.Context, input domain.BirthInput, referenceVersion string, check TimeoutCheck) (*domain.NatalResult, error) {
	if check == nil {
		check = func() error { return nil }
	}

	snapshot, err := s.RefService.GetActive(ctx, referenceVersion)
	if err != nil {
		return nil, err
	}
	if err := check(); err != nil {
		return nil, err
	}

	prepared, err := s.PrepareBirth(input)
	if err != nil {
		return nil, err
	}
	if err := check(); err != nil {
		return nil, err
	}

	opts := ephemeris.CalcOptions{
		Zodiac: s.zodiac(),
		Frame:  s.frame(),
		Lat:    input.BirthLat,
		Lon:    input.BirthLon,
	}
	if s.Cfg != nil {
		opts.Ayanamsa = s.Cfg.Ayanamsa
		opts.AltitudeM = s.Cfg.AltitudeM
	}

	positions, err := s.Engine.CalculatePlanets(prepared.JulianDay, opts)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		positions[i].Longitude = round6(positions[i].Longitude)
		positions[i].SignCode = domain.SignForLongitude(positions[i].Longitude, snapshot.Signs)
	}
	if err := check(); err != nil {
		return nil, err
	}

	result := &domain.NatalResult{
		ReferenceVersion: snapshot.Version,
		RulesetVersion:   s.rulesetVersion(),
		Engine:           s.Engine.Name(),
		HouseSystem:      s.houseSystem(),
		PreparedInput:    *prepared,
		PlanetPositions:  positions,
		MissingBirthTime: prepared.MissingBirthTime,
	}

	// дома требуют координат места; без них результат остаётся без куспидов
	if input.BirthLat != nil && input.BirthLon != nil {
		houseSet, err := s.calculateHouses(prepared.JulianDay, *input.BirthLat, *input.BirthLon, opts)
		if err != nil {
			return nil, err
		}
		for i := range houseSet.Houses {
			houseSet.Houses[i].CuspLongitude = round6(houseSet.Houses[i].CuspLongitude)
		}
		asc := round6(houseSet.AscendantLongitude)
		mc := round6(houseSet.MCLongitude)

		result.Houses = houseSet.Houses
		result.HouseSystem = houseSet.HouseSystem
		result.Ascendant = &asc
		result.MC = &mc
	}
	if err := check(); err != nil {
		return nil, err
	}

	result.Aspects = ComputeAspects(positions, snapshot.Aspects)

	s.Log.Info("natal chart calculated",
		"reference_version", result.ReferenceVersion,
		"engine", result.Engine,
		"julian_day", prepared.JulianDay,
		"missing_birth_time", prepared.MissingBirthTime,
		"aspects", len(result.Aspects),
	)

	return result, nil
}

// calculateHouses считает дома с откатом на equal: сервисный слой вправе
// использовать equal когда настроенная система недоступна движку
func (s *Service) calculateHouses(jdUT, lat, lon float64, opts ephemeris.CalcOptions) (*domain.HouseSet, error) {
	houseSystem := s.houseSystem()
	houseSet, err := s.Engine.CalculateHouses(jdUT, lat, lon, houseSystem, opts)
	if err == nil {
		return houseSet, nil
	}

	var engineErr *domain.EngineError
	if errors.As(err, &engineErr) &&
		engineErr.Code == domain.ErrCodeUnsupportedHouseSystem &&
		houseSystem != domain.HouseSystemEqual {
		s.Log.Warn("house system unavailable, falling back to equal",
			"requested", houseSystem,
		)
		return s.Engine.CalculateHouses(jdUT, lat, lon, domain.HouseSystemEqual, opts)
	}

	return nil, err
}

// defaultTimeoutCheck проверка бюджета из конфигурации плюс отмена контекста
func (s *Service) defaultTimeoutCheck(ctx context.Context) TimeoutCheck {
	start := time.Now()
	budget := s.Cfg.Timeout()
	return func() error {
		if err := ctx.Err(); err != nil {
			return domain.NewEngineError(domain.ErrCodeNatalTimeout, "natal calculation cancelled").WithCause(err)
		}
		if time.Since(start) > budget {
			return domain.NewEngineError(domain.ErrCodeNatalTimeout, "natal calculation budget exceeded").
				WithDetail("budget_seconds", budget.Seconds())
		}
		return nil
	}
}

func (s *Service) zodiac() string {
	if s.Cfg != nil && s.Cfg.Zodiac != "" {
		return s.Cfg.Zodiac
	}
	return domain.ZodiacTropical
}

func (s *Service) frame() string {
	if s.Cfg != nil && s.Cfg.Frame != "" {
		return s.Cfg.Frame
	}
	return domain.FrameGeocentric
}

func (s *Service) houseSystem() string {
	if s.Cfg != nil && s.Cfg.HouseSystem != "" {
		return s.Cfg.HouseSystem
	}
	return domain.HouseSystemPlacidus
}

func (s *Service) rulesetVersion() string {
	if s.Cfg != nil && s.Cfg.RulesetVersion != "" {
		return s.Cfg.RulesetVersion
	}
	return "1.0.0"
}
