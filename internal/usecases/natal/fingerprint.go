package natal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/google/uuid"
)

// ComputeInputHash детерминированный SHA-256 отпечаток входа расчёта.
// Хэшируется канонический JSON: ключи отсортированы, разделители без
// пробелов. Результат совпадает между запусками и платформами.
func ComputeInputHash(input domain.BirthInput, referenceVersion, rulesetVersion string) (string, error) {
	payload := map[string]any{
		"input":             input,
		"reference_version": referenceVersion,
		"ruleset_version":   rulesetVersion,
	}

	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("failed to build canonical json: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// canonicalJSON сериализует значение через generic-представление:
// encoding/json сортирует ключи map на всех уровнях вложенности
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

// PersistTrace сохраняет результат расчёта и возвращает новый chart_id.
// Повторный вызов с тем же входом даёт другой chart_id, но тот же
// input_hash и тот же payload.
func (s *Service) PersistTrace(ctx context.Context, input domain.BirthInput, result *domain.NatalResult, userID *string) (string, error) {
	if result == nil || result.ReferenceVersion == "" || result.RulesetVersion == "" {
		return "", domain.NewEngineError(domain.ErrCodeInvalidChartResult, "result versions must not be empty")
	}

	inputHash, err := ComputeInputHash(input, result.ReferenceVersion, result.RulesetVersion)
	if err != nil {
		return "", fmt.Errorf("failed to compute input hash: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result payload: %w", err)
	}

	chartID := uuid.New().String()
	record := &domain.ChartResultRecord{
		ChartID:          chartID,
		UserID:           userID,
		ReferenceVersion: result.ReferenceVersion,
		RulesetVersion:   result.RulesetVersion,
		InputHash:        inputHash,
		ResultPayload:    payload,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.ChartRepo.Insert(ctx, record); err != nil {
		return "", err
	}

	// кэш и события вспомогательны: их сбои логируются и не валят запись
	if s.Cache != nil {
		key := cacheKey(inputHash)
		if err := s.Cache.Set(ctx, key, string(payload), s.cacheTTL()); err != nil {
			s.Log.Warn("failed to cache natal result",
				"error", err,
				"chart_id", chartID,
				"cache_key", key,
			)
		}
	}

	if s.Events != nil {
		if err := s.Events.SendChartComputed(ctx, chartID, inputHash, result.ReferenceVersion); err != nil {
			s.Log.Warn("failed to publish chart event",
				"error", err,
				"chart_id", chartID,
			)
		}
	}

	s.Log.Info("natal result persisted",
		"chart_id", chartID,
		"input_hash", inputHash,
		"reference_version", result.ReferenceVersion,
	)

	return chartID, nil
}

// GetAuditRecord получает запись аудита по chart_id
func (s *Service) GetAuditRecord(ctx context.Context, chartID string) (*domain.ChartResultRecord, error) {
	if _, err := uuid.Parse(chartID); err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeChartResultNotFound, "chart id is not a valid uuid").
			WithDetail("chart_id", chartID)
	}
	return s.ChartRepo.GetByChartID(ctx, chartID)
}

// LookupCached ищет ранее сохранённый результат по отпечатку входа.
// Промах кэша и его ошибки неразличимы: вызывающий просто считает заново.
func (s *Service) LookupCached(ctx context.Context, input domain.BirthInput, referenceVersion string) (*domain.NatalResult, bool) {
	if s.Cache == nil {
		return nil, false
	}

	snapshot, err := s.RefService.GetActive(ctx, referenceVersion)
	if err != nil {
		return nil, false
	}

	inputHash, err := ComputeInputHash(input, snapshot.Version, s.rulesetVersion())
	if err != nil {
		return nil, false
	}

	payload, err := s.Cache.Get(ctx, cacheKey(inputHash))
	if err != nil || payload == "" {
		return nil, false
	}

	var result domain.NatalResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.Log.Warn("failed to decode cached natal result",
			"error", err,
			"input_hash", inputHash,
		)
		return nil, false
	}

	return &result, true
}

func cacheKey(inputHash string) string {
	return "natal:result:" + inputHash
}

func (s *Service) cacheTTL() time.Duration {
	return 24 * time.Hour
}
