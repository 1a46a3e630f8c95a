package natalController

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http/controllers/respond"
	"github.com/daconrilcy/horoscope-front-sub002/internal/pkg/metrics"
	"github.com/daconrilcy/horoscope-front-sub002/internal/usecases/natal"
)

type Controller struct {
	NatalService *natal.Service
	Counters     *metrics.Counters
	Log          *slog.Logger
}

func New(natalService *natal.Service, counters *metrics.Counters, log *slog.Logger) *Controller {
	return &Controller{
		NatalService: natalService,
		Counters:     counters,
		Log:          log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/v1/natal", c.handleCalculate)
	router.GET("/api/v1/charts/:chart_id", c.handleGetChart)
}

// handleCalculate полный расчёт натальной карты. При persist результат
// сохраняется write-once и в ответ попадают chart_id с input_hash.
func (c *Controller) handleCalculate(ctx *gin.Context) {
	var req CalculateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind natal request",
			"error", err,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_birth_input", "message": "invalid request body"},
		})
		return
	}

	input := req.birthInput()

	result, hit := c.NatalService.LookupCached(ctx.Request.Context(), input, req.ReferenceVersion)
	if hit {
		c.Counters.NatalCacheHits.Add(1)
	} else {
		computed, err := c.NatalService.CalculateNatal(ctx.Request.Context(), input, req.ReferenceVersion)
		if err != nil {
			c.Counters.NatalFailed.Add(1)
			respond.Error(ctx, c.Log, err)
			return
		}
		c.Counters.NatalComputed.Add(1)
		result = computed
	}

	resp := CalculateResponse{Result: result}

	if req.Persist {
		chartID, err := c.NatalService.PersistTrace(ctx.Request.Context(), input, result, req.UserID)
		if err != nil {
			respond.Error(ctx, c.Log, err)
			return
		}
		c.Counters.ChartsPersisted.Add(1)
		resp.ChartID = chartID
		hash, err := natal.ComputeInputHash(input, result.ReferenceVersion, result.RulesetVersion)
		if err == nil {
			resp.InputHash = hash
		}
	}

	if req.WithProfile {
		snapshot, err := c.NatalService.RefService.GetActive(ctx.Request.Context(), result.ReferenceVersion)
		if err != nil {
			respond.Error(ctx, c.Log, err)
			return
		}
		resp.Profile = natal.BuildProfile(result, snapshot.Signs)
	}

	ctx.JSON(http.StatusOK, resp)
}

// handleGetChart аудиторская запись сохранённого результата
func (c *Controller) handleGetChart(ctx *gin.Context) {
	chartID := ctx.Param("chart_id")

	record, err := c.NatalService.GetAuditRecord(ctx.Request.Context(), chartID)
	if err != nil {
		respond.Error(ctx, c.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, record)
}
