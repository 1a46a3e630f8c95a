package healthcheckController

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/daconrilcy/horoscope-front-sub002/internal/pkg/metrics"
)

type HealthCheckController struct {
	db       *sqlx.DB
	counters *metrics.Counters
	engine   string
	log      *slog.Logger
}

func New(db *sqlx.DB, counters *metrics.Counters, engine string, log *slog.Logger) *HealthCheckController {
	return &HealthCheckController{
		db:       db,
		counters: counters,
		engine:   engine,
		log:      log,
	}
}

func (c *HealthCheckController) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", c.health)
	r.GET("/ready", c.ready)
	r.GET("/metrics", c.metrics)
}

// health базовая проверка (всегда возвращает 200)
func (c *HealthCheckController) health(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "ok",
		"engine": c.engine,
	})
}

// ready проверка готовности. Без БД (in-memory режим) сервис готов,
// пока жив процесс.
func (c *HealthCheckController) ready(ctx *gin.Context) {
	if c.db != nil {
		if err := c.db.Ping(); err != nil {
			c.log.Error("Database not ready", "error", err)
			ctx.JSON(503, gin.H{
				"status": "not ready",
				"error":  "database unavailable",
			})
			return
		}
	}

	ctx.JSON(200, gin.H{
		"status": "ready",
	})
}

// metrics процессные счётчики в плоском JSON
func (c *HealthCheckController) metrics(ctx *gin.Context) {
	ctx.JSON(200, c.counters.Snapshot())
}
