package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
)

// ChartRepo write-once хранилище результатов в памяти
type ChartRepo struct {
	mu      sync.RWMutex
	records map[string]domain.ChartResultRecord
}

// NewChartRepo создаёт пустое хранилище результатов в памяти
func NewChartRepo() *ChartRepo {
	return &ChartRepo{
		records: make(map[string]domain.ChartResultRecord),
	}
}

var _ ports.IChartRepo = (*ChartRepo)(nil)

// Insert сохраняет запись аудита; повторная вставка того же chart_id отклоняется
func (r *ChartRepo) Insert(ctx context.Context, record *domain.ChartResultRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ChartID]; exists {
		return fmt.Errorf("chart result %s already exists", record.ChartID)
	}
	r.records[record.ChartID] = *record
	return nil
}

// GetByChartID получает запись аудита по chart_id
func (r *ChartRepo) GetByChartID(ctx context.Context, chartID string) (*domain.ChartResultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[chartID]
	if !ok {
		return nil, domain.NewEngineError(domain.ErrCodeChartResultNotFound, "chart result not found").
			WithDetail("chart_id", chartID)
	}
	return &record, nil
}
