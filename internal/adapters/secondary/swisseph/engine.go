package swisseph

import (
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

// Engine адаптер нативной библиотеки эфемерид.
//
// Библиотека несёт процесс-глобальное состояние (сидерический режим,
// топоцентрические координаты), поэтому все вызовы сериализуются одним
// мьютексом, а состояние возвращается к нейтральному (0,0,0) на каждом
// пути выхода - и при успехе, и при ошибке.
type Engine struct {
	native nativeAPI
	cfg    *Config
	log    *slog.Logger

	mu sync.Mutex

	calcFailures   atomic.Int64
	housesFailures atomic.Int64
}

// New создаёт движок поверх swephgo и задаёт путь к файлам эфемерид
func New(cfg *Config, log *slog.Logger) *Engine {
	e := &Engine{
		native: swephNative{},
		cfg:    cfg,
		log:    log,
	}
	if cfg != nil && cfg.EphePath != "" {
		e.native.SetEphePath(cfg.EphePath)
	}
	return e
}

// newWithNative конструктор для тестов с подменённой нативной библиотекой
func newWithNative(native nativeAPI, cfg *Config, log *slog.Logger) *Engine {
	return &Engine{
		native: native,
		cfg:    cfg,
		log:    log,
	}
}

// Name имя движка в результатах расчёта
func (e *Engine) Name() string {
	return domain.EngineSwisseph
}

// Close освобождает ресурсы нативной библиотеки
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.native.Close()
}

// Metrics счётчики сбоев нативных вызовов (только атомарные инкременты)
func (e *Engine) Metrics() (calcFailures, housesFailures int64) {
	return e.calcFailures.Load(), e.housesFailures.Load()
}

// withGlobals выполняет fn под глобальным мьютексом, применяя опции и
// восстанавливая нейтральное состояние библиотеки при выходе
func (e *Engine) withGlobals(opts ephemeris.CalcOptions, fn func(flags int) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	flags := seflgSwieph | seflgSpeed
	mutated := false
	defer func() {
		if mutated {
			e.native.SetSidMode(0, 0, 0)
			e.native.SetTopo(0, 0, 0)
		}
	}()

	if opts.Zodiac == domain.ZodiacSidereal {
		mode, ok := sidModeFor(opts.Ayanamsa)
		if !ok {
			return domain.NewEngineError(domain.ErrCodeEphemerisCalcFailed, "unknown ayanamsa").
				WithDetail("ayanamsa", opts.Ayanamsa)
		}
		e.native.SetSidMode(mode, 0, 0)
		mutated = true
		flags |= seflgSidereal
	}

	if opts.Frame == domain.FrameTopocentric {
		if opts.Lat == nil || opts.Lon == nil {
			return domain.NewEngineError(domain.ErrCodeEphemerisCalcFailed,
				"topocentric frame requires lat and lon")
		}
		e.native.SetTopo(*opts.Lon, *opts.Lat, opts.AltitudeM)
		mutated = true
		flags |= seflgTopoctr
	}

	return fn(flags)
}

// sidModeFor сопоставляет имя аянамсы сидерическому режиму библиотеки.
// По умолчанию lahiri.
func sidModeFor(ayanamsa string) (int32, bool) {
	switch strings.ToLower(ayanamsa) {
	case "", domain.AyanamsaLahiri:
		return sidmLahiri, true
	case "fagan_bradley":
		return sidmFaganBradley, true
	case "raman":
		return sidmRaman, true
	case "krishnamurti":
		return sidmKrishnamurti, true
	default:
		return 0, false
	}
}

// nativeError обрезает сообщение нативной библиотеки до первого NUL
func nativeError(serr []byte) string {
	if i := strings.IndexByte(string(serr), 0); i >= 0 {
		return strings.TrimSpace(string(serr[:i]))
	}
	return strings.TrimSpace(string(serr))
}

// normalizeLongitude приводит долготу к [0, 360)
func normalizeLongitude(deg float64) float64 {
	normalized := math.Mod(deg, 360.0)
	if normalized < 0 {
		normalized += 360.0
	}
	return normalized
}
