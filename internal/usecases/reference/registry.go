package reference

import (
	"context"
	"fmt"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// Границы допустимого орба переопределения
const (
	orbOverrideMin = 0.0
	orbOverrideMax = 15.0
)

// Seed создаёт версию справочника с каталогом по умолчанию.
// Идемпотентен: повторный вызов на наполненной версии - no-op.
func (s *Service) Seed(ctx context.Context, version string) error {
	if version == "" {
		return domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "version must not be empty")
	}
	if err := s.Repo.Seed(ctx, version); err != nil {
		return fmt.Errorf("failed to seed reference version: %w", err)
	}
	s.Log.Info("reference version ready", "version", version)
	return nil
}

// Clone копирует все дочерние строки источника в новую версию.
// Клон независимо мутируем до собственного лока.
func (s *Service) Clone(ctx context.Context, source, target string) error {
	if err := s.Repo.Clone(ctx, source, target); err != nil {
		return fmt.Errorf("failed to clone reference version: %w", err)
	}
	s.Log.Info("reference version cloned", "source", source, "target", target)
	return nil
}

// Lock навсегда замораживает версию
func (s *Service) Lock(ctx context.Context, version string) error {
	return s.Repo.Lock(ctx, version)
}

// GetActive возвращает read-only срез активной версии.
// Пустой version означает версию по умолчанию из конфигурации.
func (s *Service) GetActive(ctx context.Context, version string) (*domain.ReferenceSnapshot, error) {
	if version == "" {
		version = s.DefaultVersion
	}
	snapshot, err := s.Repo.GetSnapshot(ctx, version)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ValidateOrbOverrides проверяет карту переопределений орбов.
// Каждое значение должно попадать в (0, 15].
func (s *Service) ValidateOrbOverrides(overrides map[string]float64) error {
	for pairKey, value := range overrides {
		if value <= orbOverrideMin {
			return domain.NewEngineError(domain.ErrCodeInvalidOrbOverride, "orb override out of range").
				WithDetail("pair", pairKey).
				WithDetail("value", value).
				WithDetail("reason", "must_be_gt_0")
		}
		if value > orbOverrideMax {
			return domain.NewEngineError(domain.ErrCodeInvalidOrbOverride, "orb override out of range").
				WithDetail("pair", pairKey).
				WithDetail("value", value).
				WithDetail("reason", "must_be_lte_15")
		}
	}
	return nil
}

// RenamePlanet переименовывает планету незалоченной версии
func (s *Service) RenamePlanet(ctx context.Context, version, planetCode, name string) error {
	return s.Repo.UpdatePlanetName(ctx, version, planetCode, name)
}

// SetAspectOrbs задаёт орбы аспекта незалоченной версии с валидацией переопределений
func (s *Service) SetAspectOrbs(ctx context.Context, version, aspectCode string, defaultOrb float64, orbLuminaries *float64, overrides map[string]float64) error {
	if defaultOrb <= orbOverrideMin || defaultOrb > orbOverrideMax {
		reason := "must_be_gt_0"
		if defaultOrb > orbOverrideMax {
			reason = "must_be_lte_15"
		}
		return domain.NewEngineError(domain.ErrCodeInvalidOrbOverride, "default orb out of range").
			WithDetail("value", defaultOrb).
			WithDetail("reason", reason)
	}
	if err := s.ValidateOrbOverrides(overrides); err != nil {
		return err
	}

	// ключи нормализуются к канонической форме пары
	normalized := make(map[string]float64, len(overrides))
	for key, value := range overrides {
		normalized[normalizePairKey(key)] = value
	}

	return s.Repo.UpdateAspectOrbs(ctx, version, aspectCode, defaultOrb, orbLuminaries, normalized)
}

// normalizePairKey приводит ключ "a-b" к канонической форме PairKey
func normalizePairKey(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '-' {
			return domain.PairKey(key[:i], key[i+1:])
		}
	}
	return key
}
