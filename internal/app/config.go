package app

import (
	"fmt"

	server "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http"
	kafkaAdapter "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/kafka"
	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/storage/redis"
	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/swisseph"
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/pkg/logger"
	natalService "github.com/daconrilcy/horoscope-front-sub002/internal/usecases/natal"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres *pg.Config           `envconfig:"POSTGRES"`
	Redis    *redisAdapter.Config `envconfig:"REDIS"`
	Kafka    *kafkaAdapter.Config `envconfig:"KAFKA"`
	Swisseph *swisseph.Config     `envconfig:"SWISSEPH"`
	Natal    *natalService.Config `envconfig:"NATAL"`
	Log      *logger.Config       `envconfig:"LOG"`
	Server   *server.Config       `envconfig:"APISERVER"`

	// Engine движок эфемерид: swisseph или simplified (деградированный режим)
	Engine string `envconfig:"ENGINE" default:"swisseph"`

	// ReferenceVersion версия справочника по умолчанию
	ReferenceVersion string `envconfig:"REFERENCE_VERSION" default:"1.0.0"`

	// StorageMode postgres или memory (локальная разработка без БД)
	StorageMode string `envconfig:"STORAGE_MODE" default:"postgres"`

	// RedisEnabled кэш результатов опционален
	RedisEnabled bool `envconfig:"REDIS_ENABLED" default:"false"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Engine {
	case domain.EngineSwisseph, domain.EngineSimplified:
	default:
		return fmt.Errorf("invalid engine: %s", c.Engine)
	}

	switch c.StorageMode {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid storage mode: %s", c.StorageMode)
	}

	if c.Engine == domain.EngineSwisseph {
		if c.Swisseph == nil || c.Swisseph.EphePath == "" {
			return fmt.Errorf("swisseph engine requires SWISSEPH_EPHE_PATH")
		}
	}

	return nil
}
