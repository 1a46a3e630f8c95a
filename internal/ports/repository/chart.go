package repository

import (
	"context"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// IChartRepo write-once хранилище результатов расчёта.
// Запись не обновляется после вставки; single-writer по chart_id.
type IChartRepo interface {
	Insert(ctx context.Context, record *domain.ChartResultRecord) error
	GetByChartID(ctx context.Context, chartID string) (*domain.ChartResultRecord, error)
}
