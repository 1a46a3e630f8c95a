package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// Producer публикует события о рассчитанных картах
type Producer struct {
	producer sarama.SyncProducer
	cfg      *Config
	log      *slog.Logger
}

// NewProducer создаёт новый Kafka producer
func NewProducer(cfg *Config, log *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	if cfg.SecurityProtocol == "SASL_SSL" || cfg.SecurityProtocol == "SASL_PLAINTEXT" {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if cfg.SASLMechanism == "SCRAM-SHA-256" {
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		config.Net.SASL.User = cfg.SASLUsername
		config.Net.SASL.Password = cfg.SASLPassword
		if cfg.SecurityProtocol == "SASL_SSL" {
			config.Net.TLS.Enable = true
		}
	}

	producer, err := sarama.NewSyncProducer(cfg.GetBrokers(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return &Producer{
		producer: producer,
		cfg:      cfg,
		log:      log,
	}, nil
}

// chartComputedEvent тело события о сохранённом результате
type chartComputedEvent struct {
	ChartID          string `json:"chart_id"`
	InputHash        string `json:"input_hash"`
	ReferenceVersion string `json:"reference_version"`
	ComputedAt       string `json:"computed_at"`
}

// SendChartComputed отправляет событие о сохранённом результате расчёта.
// Ключ сообщения - chart_id, чтобы события одной карты попадали в одну партицию.
func (p *Producer) SendChartComputed(ctx context.Context, chartID, inputHash, referenceVersion string) error {
	event := chartComputedEvent{
		ChartID:          chartID,
		InputHash:        inputHash,
		ReferenceVersion: referenceVersion,
		ComputedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	valueBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal chart event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.cfg.Topic,
		Key:   sarama.StringEncoder(chartID),
		Value: sarama.ByteEncoder(valueBytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send chart event: %w", err)
	}

	p.log.Debug("chart event sent",
		"chart_id", chartID,
		"partition", partition,
		"offset", offset,
	)

	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	return p.producer.Close()
}
