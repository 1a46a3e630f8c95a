package chartRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/persistence"
	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
)

// Repository write-once хранилище результатов расчёта в Postgres
type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

// New создаёт репозиторий результатов
func New(db persistence.Persistence, log *slog.Logger) ports.IChartRepo {
	return &Repository{
		db:  db,
		Log: log,
	}
}

// Insert сохраняет запись аудита. Вставка оборачивается savepoint:
// сбой записи результата откатывает только вложенный блок, не внешнюю
// транзакцию вызывающего кода.
func (r *Repository) Insert(ctx context.Context, record *domain.ChartResultRecord) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		const sp = "chart_result_insert"
		if err := tx.Savepoint(ctx, sp); err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}

		query := `
			INSERT INTO chart_results (chart_id, user_id, reference_version, ruleset_version, input_hash, result_payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		err := tx.Exec(ctx, query,
			record.ChartID,
			record.UserID,
			record.ReferenceVersion,
			record.RulesetVersion,
			record.InputHash,
			record.ResultPayload,
			record.CreatedAt,
		)
		if err != nil {
			if rbErr := tx.RollbackToSavepoint(ctx, sp); rbErr != nil {
				return fmt.Errorf("failed to rollback savepoint: %w", rbErr)
			}
			r.Log.Error("failed to insert chart result",
				"error", err,
				"chart_id", record.ChartID,
			)
			return fmt.Errorf("failed to insert chart result: %w", err)
		}

		if err := tx.ReleaseSavepoint(ctx, sp); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}

		r.Log.Debug("chart result inserted",
			"chart_id", record.ChartID,
			"input_hash", record.InputHash,
		)
		return nil
	})
}

// GetByChartID получает запись аудита по chart_id
func (r *Repository) GetByChartID(ctx context.Context, chartID string) (*domain.ChartResultRecord, error) {
	var record domain.ChartResultRecord
	query := `
		SELECT chart_id, user_id, reference_version, ruleset_version, input_hash, result_payload, created_at
		FROM chart_results WHERE chart_id = $1
	`
	if err := r.db.Get(ctx, &record, query, chartID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewEngineError(domain.ErrCodeChartResultNotFound, "chart result not found").
				WithDetail("chart_id", chartID)
		}
		r.Log.Error("failed to get chart result", "error", err, "chart_id", chartID)
		return nil, fmt.Errorf("failed to get chart result: %w", err)
	}
	return &record, nil
}
