package referenceRepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/persistence"
	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
	"github.com/google/uuid"
)

// Repository хранилище версионированного справочника в Postgres.
// Неизменяемость залоченной версии обеспечивается дважды: проверкой
// в транзакции здесь и триггером reference_version_lock_guard в БД.
type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

// New создаёт репозиторий справочника
func New(db persistence.Persistence, log *slog.Logger) ports.IReferenceRepo {
	return &Repository{
		db:  db,
		Log: log,
	}
}

type aspectRow struct {
	Code          string          `db:"code"`
	AngleDeg      float64         `db:"angle_deg"`
	DefaultOrbDeg float64         `db:"default_orb_deg"`
	OrbLuminaries sql.NullFloat64 `db:"orb_luminaries"`
	OrbOverrides  []byte          `db:"orb_overrides"`
}

// GetVersion получает версию справочника по строковому идентификатору
func (r *Repository) GetVersion(ctx context.Context, version string) (*domain.ReferenceVersion, error) {
	var row domain.ReferenceVersion
	query := `SELECT id, version, is_locked, created_at FROM reference_versions WHERE version = $1`
	if err := r.db.Get(ctx, &row, query, version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
				WithDetail("version", version)
		}
		r.Log.Error("failed to get reference version", "error", err, "version", version)
		return nil, fmt.Errorf("failed to get reference version: %w", err)
	}
	return &row, nil
}

// Seed создаёт версию и наполняет её каталогом по умолчанию.
// Идемпотентен: повторный вызов на уже наполненной версии - no-op.
// Всё выполняется в одной транзакции.
func (r *Repository) Seed(ctx context.Context, version string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		var versionID string
		err := tx.Get(ctx, &versionID, `SELECT id FROM reference_versions WHERE version = $1 FOR UPDATE`, version)
		if errors.Is(err, sql.ErrNoRows) {
			versionID = uuid.New().String()
			if err := tx.Exec(ctx,
				`INSERT INTO reference_versions (id, version, is_locked, created_at) VALUES ($1, $2, FALSE, $3)`,
				versionID, version, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to create reference version: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to select reference version: %w", err)
		}

		var planetCount int
		if err := tx.Get(ctx, &planetCount, `SELECT COUNT(*) FROM reference_planets WHERE version_id = $1`, versionID); err != nil {
			return fmt.Errorf("failed to count planets: %w", err)
		}
		if planetCount > 0 {
			r.Log.Debug("reference version already populated", "version", version)
			return nil
		}

		for _, p := range domain.DefaultPlanets() {
			if err := tx.Exec(ctx,
				`INSERT INTO reference_planets (version_id, code, name, position) VALUES ($1, $2, $3, $4)`,
				versionID, p.Code, p.Name, p.Position); err != nil {
				return mapLockError(fmt.Errorf("failed to insert planet %s: %w", p.Code, err))
			}
		}

		for _, s := range domain.DefaultSigns() {
			if err := tx.Exec(ctx,
				`INSERT INTO reference_signs (version_id, code, name, position) VALUES ($1, $2, $3, $4)`,
				versionID, s.Code, s.Name, s.Position); err != nil {
				return mapLockError(fmt.Errorf("failed to insert sign %s: %w", s.Code, err))
			}
		}

		for _, h := range domain.DefaultHouses() {
			if err := tx.Exec(ctx,
				`INSERT INTO reference_houses (version_id, number, name) VALUES ($1, $2, $3)`,
				versionID, h.Number, h.Name); err != nil {
				return mapLockError(fmt.Errorf("failed to insert house %d: %w", h.Number, err))
			}
		}

		for _, a := range domain.DefaultAspects() {
			if err := tx.Exec(ctx,
				`INSERT INTO reference_aspects (version_id, code, angle_deg, default_orb_deg) VALUES ($1, $2, $3, $4)`,
				versionID, a.Code, a.AngleDeg, a.DefaultOrbDeg); err != nil {
				return mapLockError(fmt.Errorf("failed to insert aspect %s: %w", a.Code, err))
			}
		}

		r.Log.Info("reference version seeded", "version", version)
		return nil
	})
}

// Clone атомарно копирует все дочерние строки источника в новую версию
func (r *Repository) Clone(ctx context.Context, source, target string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		var sourceID string
		err := tx.Get(ctx, &sourceID, `SELECT id FROM reference_versions WHERE version = $1`, source)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewEngineError(domain.ErrCodeReferenceSourceNotFound, "source reference version not found").
				WithDetail("source", source)
		}
		if err != nil {
			return fmt.Errorf("failed to select source version: %w", err)
		}

		var exists int
		if err := tx.Get(ctx, &exists, `SELECT COUNT(*) FROM reference_versions WHERE version = $1`, target); err != nil {
			return fmt.Errorf("failed to check target version: %w", err)
		}
		if exists > 0 {
			return domain.NewEngineError(domain.ErrCodeReferenceTargetExists, "target reference version already exists").
				WithDetail("target", target)
		}

		targetID := uuid.New().String()
		if err := tx.Exec(ctx,
			`INSERT INTO reference_versions (id, version, is_locked, created_at) VALUES ($1, $2, FALSE, $3)`,
			targetID, target, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to create target version: %w", err)
		}

		copies := []struct {
			table   string
			columns string
		}{
			{"reference_planets", "code, name, position"},
			{"reference_signs", "code, name, position"},
			{"reference_houses", "number, name"},
			{"reference_aspects", "code, angle_deg, default_orb_deg, orb_luminaries, orb_overrides"},
			{"reference_characteristics", "entity_type, entity_code, trait, value"},
		}
		for _, c := range copies {
			query := fmt.Sprintf(
				`INSERT INTO %s (version_id, %s) SELECT $1, %s FROM %s WHERE version_id = $2`,
				c.table, c.columns, c.columns, c.table)
			if err := tx.Exec(ctx, query, targetID, sourceID); err != nil {
				return mapLockError(fmt.Errorf("failed to copy %s: %w", c.table, err))
			}
		}

		r.Log.Info("reference version cloned", "source", source, "target", target)
		return nil
	})
}

// Lock навсегда запрещает мутации дочерних строк версии
func (r *Repository) Lock(ctx context.Context, version string) error {
	affected, err := r.db.ExecWithResult(ctx,
		`UPDATE reference_versions SET is_locked = TRUE WHERE version = $1`, version)
	if err != nil {
		return fmt.Errorf("failed to lock reference version: %w", err)
	}
	if affected == 0 {
		return domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}
	r.Log.Info("reference version locked", "version", version)
	return nil
}

// GetSnapshot read-only срез версии для расчётов
func (r *Repository) GetSnapshot(ctx context.Context, version string) (*domain.ReferenceSnapshot, error) {
	versionRow, err := r.GetVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.ReferenceSnapshot{Version: version}

	if err := r.db.Select(ctx, &snapshot.Planets,
		`SELECT code, name, position FROM reference_planets WHERE version_id = $1 ORDER BY position`,
		versionRow.ID); err != nil {
		return nil, fmt.Errorf("failed to select planets: %w", err)
	}

	if err := r.db.Select(ctx, &snapshot.Signs,
		`SELECT code, name, position FROM reference_signs WHERE version_id = $1 ORDER BY position`,
		versionRow.ID); err != nil {
		return nil, fmt.Errorf("failed to select signs: %w", err)
	}

	if err := r.db.Select(ctx, &snapshot.Houses,
		`SELECT number, name FROM reference_houses WHERE version_id = $1 ORDER BY number`,
		versionRow.ID); err != nil {
		return nil, fmt.Errorf("failed to select houses: %w", err)
	}

	var aspectRows []aspectRow
	if err := r.db.Select(ctx, &aspectRows,
		`SELECT code, angle_deg, default_orb_deg, orb_luminaries, orb_overrides FROM reference_aspects WHERE version_id = $1 ORDER BY angle_deg`,
		versionRow.ID); err != nil {
		return nil, fmt.Errorf("failed to select aspects: %w", err)
	}

	for _, row := range aspectRows {
		aspect := domain.ReferenceAspect{
			Code:          row.Code,
			AngleDeg:      row.AngleDeg,
			DefaultOrbDeg: row.DefaultOrbDeg,
		}
		if row.OrbLuminaries.Valid {
			v := row.OrbLuminaries.Float64
			aspect.OrbLuminaries = &v
		}
		if len(row.OrbOverrides) > 0 {
			if err := json.Unmarshal(row.OrbOverrides, &aspect.OrbOverrides); err != nil {
				return nil, fmt.Errorf("failed to unmarshal orb overrides for %s: %w", row.Code, err)
			}
		}
		snapshot.Aspects = append(snapshot.Aspects, aspect)
	}

	return snapshot, nil
}

// UpdatePlanetName переименовывает планету незалоченной версии
func (r *Repository) UpdatePlanetName(ctx context.Context, version, planetCode, name string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		versionID, err := r.mutableVersionID(ctx, tx, version)
		if err != nil {
			return err
		}

		affected, err := tx.ExecWithResult(ctx,
			`UPDATE reference_planets SET name = $1 WHERE version_id = $2 AND code = $3`,
			name, versionID, planetCode)
		if err != nil {
			return mapLockError(fmt.Errorf("failed to update planet: %w", err))
		}
		if affected == 0 {
			return fmt.Errorf("planet %s not found in version %s", planetCode, version)
		}
		return nil
	})
}

// UpdateAspectOrbs обновляет орбы аспекта незалоченной версии
func (r *Repository) UpdateAspectOrbs(ctx context.Context, version, aspectCode string, defaultOrb float64, orbLuminaries *float64, overrides map[string]float64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		versionID, err := r.mutableVersionID(ctx, tx, version)
		if err != nil {
			return err
		}

		var overridesJSON []byte
		if len(overrides) > 0 {
			overridesJSON, err = json.Marshal(overrides)
			if err != nil {
				return fmt.Errorf("failed to marshal orb overrides: %w", err)
			}
		}

		var luminaries sql.NullFloat64
		if orbLuminaries != nil {
			luminaries = sql.NullFloat64{Float64: *orbLuminaries, Valid: true}
		}

		affected, err := tx.ExecWithResult(ctx,
			`UPDATE reference_aspects SET default_orb_deg = $1, orb_luminaries = $2, orb_overrides = $3 WHERE version_id = $4 AND code = $5`,
			defaultOrb, luminaries, overridesJSON, versionID, aspectCode)
		if err != nil {
			return mapLockError(fmt.Errorf("failed to update aspect: %w", err))
		}
		if affected == 0 {
			return fmt.Errorf("aspect %s not found in version %s", aspectCode, version)
		}
		return nil
	})
}

// UpsertCharacteristic добавляет или заменяет характеристику незалоченной версии
func (r *Repository) UpsertCharacteristic(ctx context.Context, version string, ch domain.ReferenceCharacteristic) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		versionID, err := r.mutableVersionID(ctx, tx, version)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO reference_characteristics (version_id, entity_type, entity_code, trait, value)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (version_id, entity_type, entity_code, trait) DO UPDATE SET value = $5
		`
		if err := tx.Exec(ctx, query, versionID, ch.EntityType, ch.EntityCode, ch.Trait, ch.Value); err != nil {
			return mapLockError(fmt.Errorf("failed to upsert characteristic: %w", err))
		}
		return nil
	})
}

// mutableVersionID возвращает id версии, отклоняя залоченные.
// FOR UPDATE держит строку версии до конца транзакции, чтобы
// конкурентный Lock не прошёл между проверкой и мутацией.
func (r *Repository) mutableVersionID(ctx context.Context, tx persistence.Transaction, version string) (string, error) {
	var row domain.ReferenceVersion
	err := tx.Get(ctx, &row,
		`SELECT id, version, is_locked, created_at FROM reference_versions WHERE version = $1 FOR UPDATE`, version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NewEngineError(domain.ErrCodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}
	if err != nil {
		return "", fmt.Errorf("failed to select version for update: %w", err)
	}
	if row.IsLocked {
		return "", domain.NewEngineError(domain.ErrCodeReferenceVersionImmutable, "reference version is locked").
			WithDetail("version", version)
	}
	return row.ID, nil
}

// mapLockError распознаёт срабатывание триггера неизменяемости в БД
func mapLockError(err error) error {
	if err != nil && strings.Contains(err.Error(), "reference_version_immutable") {
		return domain.NewEngineError(domain.ErrCodeReferenceVersionImmutable, "reference version is locked").WithCause(err)
	}
	return err
}
