package domain

import (
	"errors"
	"fmt"
)

// Стабильные коды ошибок ядра. Контракт для вызывающих слоёв:
// переключение поведения только по коду, никогда по тексту сообщения.
const (
	ErrCodeInvalidBirthInput         = "invalid_birth_input"
	ErrCodeInvalidBirthTime          = "invalid_birth_time"
	ErrCodeInvalidTimezone           = "invalid_timezone"
	ErrCodeReferenceVersionNotFound  = "reference_version_not_found"
	ErrCodeReferenceSourceNotFound   = "reference_source_not_found"
	ErrCodeReferenceTargetExists     = "reference_target_exists"
	ErrCodeReferenceVersionImmutable = "reference_version_immutable"
	ErrCodeInvalidOrbOverride        = "invalid_orb_override"
	ErrCodeEphemerisCalcFailed       = "ephemeris_calc_failed"
	ErrCodeUnsupportedHouseSystem    = "unsupported_house_system"
	ErrCodeHousesCalcFailed          = "houses_calc_failed"
	ErrCodeChartResultNotFound       = "chart_result_not_found"
	ErrCodeInvalidChartResult        = "invalid_chart_result"
	ErrCodeNatalTimeout              = "natal_timeout"
)

// EngineError типизированная ошибка ядра: код, сообщение, детали.
// Внутренности нативной библиотеки наружу не протекают - только код и краткое сообщение.
type EngineError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError создаёт ошибку ядра с кодом и сообщением
func NewEngineError(code, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// WithDetail добавляет деталь к ошибке (возвращает ту же ошибку для цепочки)
func (e *EngineError) WithDetail(key string, value any) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause прикрепляет исходную ошибку
func (e *EngineError) WithCause(err error) *EngineError {
	e.Err = err
	return e
}

// ErrorCode извлекает код ядра из цепочки ошибок, пустая строка если не найден
func ErrorCode(err error) string {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return ""
}

// IsEngineError проверяет есть ли в цепочке типизированная ошибка ядра
func IsEngineError(err error) bool {
	var engineErr *EngineError
	return errors.As(err, &engineErr)
}

// HTTPStatus сопоставляет код ошибки классу HTTP-ответа внешнего слоя
func (e *EngineError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeChartResultNotFound, ErrCodeReferenceVersionNotFound, ErrCodeReferenceSourceNotFound:
		return 404
	case ErrCodeReferenceTargetExists, ErrCodeReferenceVersionImmutable:
		return 409
	case ErrCodeEphemerisCalcFailed, ErrCodeHousesCalcFailed:
		return 503
	case ErrCodeNatalTimeout:
		return 504
	default:
		return 422
	}
}
