package kafka

import (
	"context"
)

// IChartEventProducer интерфейс для публикации событий о рассчитанных картах
type IChartEventProducer interface {
	// SendChartComputed отправляет событие о сохранённом результате расчёта
	SendChartComputed(ctx context.Context, chartID, inputHash, referenceVersion string) error
	// Close закрывает producer
	Close() error
}
