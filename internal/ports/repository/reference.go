package repository

import (
	"context"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// IReferenceRepo хранилище версионированного справочника.
// Реализации обязаны отклонять мутации дочерних строк залоченной версии
// кодом reference_version_immutable и выполнять seed/clone атомарно.
type IReferenceRepo interface {
	GetVersion(ctx context.Context, version string) (*domain.ReferenceVersion, error)
	Seed(ctx context.Context, version string) error
	Clone(ctx context.Context, source, target string) error
	Lock(ctx context.Context, version string) error
	GetSnapshot(ctx context.Context, version string) (*domain.ReferenceSnapshot, error)
	UpdatePlanetName(ctx context.Context, version, planetCode, name string) error
	UpdateAspectOrbs(ctx context.Context, version, aspectCode string, defaultOrb float64, orbLuminaries *float64, overrides map[string]float64) error
	UpsertCharacteristic(ctx context.Context, version string, ch domain.ReferenceCharacteristic) error
}
