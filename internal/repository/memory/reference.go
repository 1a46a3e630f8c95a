package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
	"github.com/google/uuid"
)

// versionEntry версия справочника с дочерними строками.
// Дети держат обратную ссылку только через ключ версии - никакого
// графа указателей между строками и версией.
type versionEntry struct {
	meta            domain.ReferenceVersion
	planets         []domain.ReferencePlanet
	signs           []domain.ReferenceSign
	houses          []domain.ReferenceHouse
	aspects         []domain.ReferenceAspect
	characteristics []domain.ReferenceCharacteristic
}

// ReferenceRepo реализация справочника в памяти.
// Используется тестами и dev-режимом без базы данных.
type ReferenceRepo struct {
	mu       sync.RWMutex
	versions map[string]*versionEntry
}

// NewReferenceRepo создаёт пустой справочник в памяти
func NewReferenceRepo() *ReferenceRepo {
	return &ReferenceRepo{
		versions: make(map[string]*versionEntry),
	}
}

var _ ports.IReferenceRepo = (*ReferenceRepo)(nil)

// GetVersion получает версию справочника
func (r *ReferenceRepo) GetVersion(ctx context.Context, version string) (*domain.ReferenceVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.versions[version]
	if !ok {
		return nil, domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}
	meta := entry.meta
	return &meta, nil
}

// Seed создаёт версию и наполняет каталогом по умолчанию; идемпотентен
func (r *ReferenceRepo) Seed(ctx context.Context, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.versions[version]
	if !ok {
		entry = &versionEntry{
			meta: domain.ReferenceVersion{
				ID:        uuid.New().String(),
				Version:   version,
				CreatedAt: time.Now().UTC(),
			},
		}
		r.versions[version] = entry
	}

	if len(entry.planets) > 0 {
		return nil
	}
	if entry.meta.IsLocked {
		return immutableError(version)
	}

	entry.planets = domain.DefaultPlanets()
	entry.signs = domain.DefaultSigns()
	entry.houses = domain.DefaultHouses()
	entry.aspects = domain.DefaultAspects()
	return nil
}

// Clone атомарно копирует версию в новую
func (r *ReferenceRepo) Clone(ctx context.Context, source, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.versions[source]
	if !ok {
		return domain.NewEngineError(domain.ErrCodeReferenceSourceNotFound, "source reference version not found").
			WithDetail("source", source)
	}
	if _, exists := r.versions[target]; exists {
		return domain.NewEngineError(domain.ErrCodeReferenceTargetExists, "target reference version already exists").
			WithDetail("target", target)
	}

	clone := &versionEntry{
		meta: domain.ReferenceVersion{
			ID:        uuid.New().String(),
			Version:   target,
			CreatedAt: time.Now().UTC(),
		},
		planets:         append([]domain.ReferencePlanet(nil), src.planets...),
		signs:           append([]domain.ReferenceSign(nil), src.signs...),
		houses:          append([]domain.ReferenceHouse(nil), src.houses...),
		characteristics: append([]domain.ReferenceCharacteristic(nil), src.characteristics...),
	}
	for _, a := range src.aspects {
		clone.aspects = append(clone.aspects, copyAspect(a))
	}

	r.versions[target] = clone
	return nil
}

// Lock навсегда запрещает мутации дочерних строк версии
func (r *ReferenceRepo) Lock(ctx context.Context, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.versions[version]
	if !ok {
		return domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}
	entry.meta.IsLocked = true
	return nil
}

// GetSnapshot read-only срез версии
func (r *ReferenceRepo) GetSnapshot(ctx context.Context, version string) (*domain.ReferenceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.versions[version]
	if !ok {
		return nil, domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}

	snapshot := &domain.ReferenceSnapshot{
		Version: version,
		Planets: append([]domain.ReferencePlanet(nil), entry.planets...),
		Signs:   append([]domain.ReferenceSign(nil), entry.signs...),
		Houses:  append([]domain.ReferenceHouse(nil), entry.houses...),
	}
	for _, a := range entry.aspects {
		snapshot.Aspects = append(snapshot.Aspects, copyAspect(a))
	}
	return snapshot, nil
}

// UpdatePlanetName переименовывает планету незалоченной версии
func (r *ReferenceRepo) UpdatePlanetName(ctx context.Context, version, planetCode, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.mutable(version)
	if err != nil {
		return err
	}
	for i := range entry.planets {
		if entry.planets[i].Code == planetCode {
			entry.planets[i].Name = name
			return nil
		}
	}
	return fmt.Errorf("planet %s not found in version %s", planetCode, version)
}

// UpdateAspectOrbs обновляет орбы аспекта незалоченной версии
func (r *ReferenceRepo) UpdateAspectOrbs(ctx context.Context, version, aspectCode string, defaultOrb float64, orbLuminaries *float64, overrides map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.mutable(version)
	if err != nil {
		return err
	}
	for i := range entry.aspects {
		if entry.aspects[i].Code == aspectCode {
			entry.aspects[i].DefaultOrbDeg = defaultOrb
			if orbLuminaries != nil {
				v := *orbLuminaries
				entry.aspects[i].OrbLuminaries = &v
			} else {
				entry.aspects[i].OrbLuminaries = nil
			}
			if len(overrides) > 0 {
				entry.aspects[i].OrbOverrides = make(map[string]float64, len(overrides))
				for k, v := range overrides {
					entry.aspects[i].OrbOverrides[k] = v
				}
			} else {
				entry.aspects[i].OrbOverrides = nil
			}
			return nil
		}
	}
	return fmt.Errorf("aspect %s not found in version %s", aspectCode, version)
}

// UpsertCharacteristic добавляет или заменяет характеристику незалоченной версии
func (r *ReferenceRepo) UpsertCharacteristic(ctx context.Context, version string, ch domain.ReferenceCharacteristic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.mutable(version)
	if err != nil {
		return err
	}
	for i := range entry.characteristics {
		c := entry.characteristics[i]
		if c.EntityType == ch.EntityType && c.EntityCode == ch.EntityCode && c.Trait == ch.Trait {
			entry.characteristics[i].Value = ch.Value
			return nil
		}
	}
	entry.characteristics = append(entry.characteristics, ch)
	return nil
}

// mutable версия для мутации; залоченная отклоняется. Вызывать под mu.
func (r *ReferenceRepo) mutable(version string) (*versionEntry, error) {
	entry, ok := r.versions[version]
	if !ok {
		return nil, domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}
	if entry.meta.IsLocked {
		return nil, immutableError(version)
	}
	return entry, nil
}

func immutableError(version string) error {
	return domain.NewEngineError(domain.ErrCodeReferenceVersionImmutable, "reference version is locked").
		WithDetail("version", version)
}

func copyAspect(a domain.ReferenceAspect) domain.ReferenceAspect {
	out := domain.ReferenceAspect{
		Code:          a.Code,
		AngleDeg:      a.AngleDeg,
		DefaultOrbDeg: a.DefaultOrbDeg,
	}
	if a.OrbLuminaries != nil {
		v := *a.OrbLuminaries
		out.OrbLuminaries = &v
	}
	if len(a.OrbOverrides) > 0 {
		out.OrbOverrides = make(map[string]float64, len(a.OrbOverrides))
		for k, v := range a.OrbOverrides {
			out.OrbOverrides[k] = v
		}
	}
	return out
}
