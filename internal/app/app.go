package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jmoiron/sqlx"

	server "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http"
	healthcheckController "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http/controllers/healthcheck"
	natalController "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http/controllers/natal"
	referenceController "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http/controllers/reference"
	kafkaAdapter "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/kafka"
	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/simplified"
	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/storage/redis"
	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/swisseph"
	"github.com/daconrilcy/horoscope-front-sub002/internal/pkg/logger"
	"github.com/daconrilcy/horoscope-front-sub002/internal/pkg/metrics"
	cachePort "github.com/daconrilcy/horoscope-front-sub002/internal/ports/cache"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
	kafkaPort "github.com/daconrilcy/horoscope-front-sub002/internal/ports/kafka"
	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
	chartRepo "github.com/daconrilcy/horoscope-front-sub002/internal/repository/chart"
	"github.com/daconrilcy/horoscope-front-sub002/internal/repository/memory"
	referenceRepo "github.com/daconrilcy/horoscope-front-sub002/internal/repository/reference"
	natalService "github.com/daconrilcy/horoscope-front-sub002/internal/usecases/natal"
	referenceService "github.com/daconrilcy/horoscope-front-sub002/internal/usecases/reference"
)

type App struct {
	Name string
	Cfg  *Config
	Log  *slog.Logger
}

func New(name string, cfg *Config) *App {
	return &App{
		Name: name,
		Cfg:  cfg,
		Log:  logger.New(name, cfg.Log),
	}
}

func (a *App) Run(ctx context.Context) error {
	a.Log.Info("running natal engine", "engine", a.Cfg.Engine, "storage", a.Cfg.StorageMode)

	var (
		db       *sqlx.DB
		refRepo  ports.IReferenceRepo
		chRepo   ports.IChartRepo
		shutdown []func() error
	)

	if a.Cfg.StorageMode == "memory" {
		refRepo = memory.NewReferenceRepo()
		chRepo = memory.NewChartRepo()
	} else {
		var err error
		db, err = a.initPostgres()
		if err != nil {
			return fmt.Errorf("failed to init postgres: %w", err)
		}
		shutdown = append(shutdown, db.Close)

		persistenceLayer := pg.NewDB(db)
		refRepo = referenceRepo.New(persistenceLayer, a.Log)
		chRepo = chartRepo.New(persistenceLayer, a.Log)
	}

	engine, engineClose, err := a.initEngine()
	if err != nil {
		return err
	}
	if engineClose != nil {
		shutdown = append(shutdown, engineClose)
	}

	resultCache, cacheClose, err := a.initCache()
	if err != nil {
		return err
	}
	if cacheClose != nil {
		shutdown = append(shutdown, cacheClose)
	}

	events, eventsClose, err := a.initEvents()
	if err != nil {
		return err
	}
	if eventsClose != nil {
		shutdown = append(shutdown, eventsClose)
	}

	refService := referenceService.New(refRepo, a.Cfg.ReferenceVersion, a.Log)
	if err := refService.Seed(ctx, a.Cfg.ReferenceVersion); err != nil {
		return fmt.Errorf("failed to seed reference catalog: %w", err)
	}

	natalSvc := natalService.New(refService, engine, chRepo, resultCache, events, a.Cfg.Natal, a.Log)

	counters := metrics.New()
	healthCheck := healthcheckController.New(db, counters, engine.Name(), a.Log)
	natalCtrl := natalController.New(natalSvc, counters, a.Log)
	refCtrl := referenceController.New(refService, a.Log)

	httpServer := server.NewHTTPServer(a.Cfg.Server, a.Log, healthCheck, natalCtrl, refCtrl)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("failed to shutdown http server", "error", err)
		}

		for _, closeFn := range shutdown {
			if err := closeFn(); err != nil {
				a.Log.Error("failed to close resource", "error", err)
			}
		}

		a.Log.Info("application shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}

func (a *App) initPostgres() (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(db, a.Log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func (a *App) initEngine() (ephemeris.IEngine, func() error, error) {
	if a.Cfg.Engine == "simplified" {
		a.Log.Warn("running with simplified ephemeris engine, precision is degraded")
		return simplified.New(a.Log), nil, nil
	}

	engine := swisseph.New(a.Cfg.Swisseph, a.Log)
	closeFn := func() error {
		engine.Close()
		return nil
	}
	return engine, closeFn, nil
}

func (a *App) initCache() (cachePort.Cache, func() error, error) {
	if !a.Cfg.RedisEnabled {
		return nil, nil, nil
	}

	client, err := a.Cfg.Redis.NewConnection()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.Log.Info("redis connected successfully")
	return redisAdapter.NewClient(client), client.Close, nil
}

func (a *App) initEvents() (kafkaPort.IChartEventProducer, func() error, error) {
	if a.Cfg.Kafka == nil || !a.Cfg.Kafka.Enabled {
		return nil, nil, nil
	}

	producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init kafka producer: %w", err)
	}

	a.Log.Info("kafka producer initialized", "topic", a.Cfg.Kafka.Topic)
	return producer, producer.Close, nil
}
