package natal

import (
	"log/slog"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/cache"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
	kafkaPort "github.com/daconrilcy/horoscope-front-sub002/internal/ports/kafka"
	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
	"github.com/daconrilcy/horoscope-front-sub002/internal/usecases/reference"
)

// Config настройки оркестратора натальных расчётов
type Config struct {
	RulesetVersion string  `envconfig:"RULESET_VERSION" default:"1.0.0"`
	TimeoutSeconds int     `envconfig:"TIMEOUT_SECONDS" default:"150"`
	Zodiac         string  `envconfig:"ZODIAC" default:"tropical"`
	Ayanamsa       string  `envconfig:"AYANAMSA" default:"lahiri"`
	Frame          string  `envconfig:"FRAME" default:"geocentric"`
	HouseSystem    string  `envconfig:"HOUSE_SYSTEM" default:"placidus"`
	AltitudeM      float64 `envconfig:"ALTITUDE_M" default:"0"`
}

// Timeout бюджет операции расчёта
func (c *Config) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = 150
	}
	return time.Duration(seconds) * time.Second
}

// Service оркестратор натальных расчётов.
// Cache и Events опциональны (nil-safe): их сбои не валят расчёт.
type Service struct {
	RefService *reference.Service
	Engine     ephemeris.IEngine
	ChartRepo  ports.IChartRepo
	Cache      cache.Cache
	Events     kafkaPort.IChartEventProducer
	Cfg        *Config
	Log        *slog.Logger
}

// New создаёт сервис натальных расчётов
func New(
	refService *reference.Service,
	engine ephemeris.IEngine,
	chartRepo ports.IChartRepo,
	resultCache cache.Cache,
	events kafkaPort.IChartEventProducer,
	cfg *Config,
	log *slog.Logger,
) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Service{
		RefService: refService,
		Engine:     engine,
		ChartRepo:  chartRepo,
		Cache:      resultCache,
		Events:     events,
		Cfg:        cfg,
		Log:        log,
	}
}
