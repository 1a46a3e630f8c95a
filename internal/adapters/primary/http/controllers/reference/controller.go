package referenceController

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/primary/http/controllers/respond"
	"github.com/daconrilcy/horoscope-front-sub002/internal/usecases/reference"
)

type Controller struct {
	RefService *reference.Service
	Log        *slog.Logger
}

func New(refService *reference.Service, log *slog.Logger) *Controller {
	return &Controller{
		RefService: refService,
		Log:        log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/v1/reference/:version", c.handleGetSnapshot)
	router.POST("/api/v1/reference/clone", c.handleClone)
	router.POST("/api/v1/reference/:version/lock", c.handleLock)
	router.PATCH("/api/v1/reference/:version/planets/:planet_code", c.handleRenamePlanet)
	router.PUT("/api/v1/reference/:version/aspects/:aspect_code/orbs", c.handleSetAspectOrbs)
}

// handleGetSnapshot полный снапшот версии справочника
func (c *Controller) handleGetSnapshot(ctx *gin.Context) {
	version := ctx.Param("version")

	snapshot, err := c.RefService.GetActive(ctx.Request.Context(), version)
	if err != nil {
		respond.Error(ctx, c.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, snapshot)
}

// handleClone копирует залоченную версию в новую мутабельную
func (c *Controller) handleClone(ctx *gin.Context) {
	var req CloneRequest

	if err := ctx.ShouldBindJSON(&req); err != nil || req.Source == "" || req.Target == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_birth_input", "message": "source and target are required"},
		})
		return
	}

	if err := c.RefService.Clone(ctx.Request.Context(), req.Source, req.Target); err != nil {
		respond.Error(ctx, c.Log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"version": req.Target})
}

// handleLock делает версию неизменяемой. Операция необратима.
func (c *Controller) handleLock(ctx *gin.Context) {
	version := ctx.Param("version")

	if err := c.RefService.Lock(ctx.Request.Context(), version); err != nil {
		respond.Error(ctx, c.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"version": version, "is_locked": true})
}

func (c *Controller) handleRenamePlanet(ctx *gin.Context) {
	version := ctx.Param("version")
	planetCode := ctx.Param("planet_code")

	var req RenamePlanetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_birth_input", "message": "name is required"},
		})
		return
	}

	if err := c.RefService.RenamePlanet(ctx.Request.Context(), version, planetCode, req.Name); err != nil {
		respond.Error(ctx, c.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"version": version, "planet_code": planetCode, "name": req.Name})
}

func (c *Controller) handleSetAspectOrbs(ctx *gin.Context) {
	version := ctx.Param("version")
	aspectCode := ctx.Param("aspect_code")

	var req SetAspectOrbsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_orb_override", "message": "invalid request body"},
		})
		return
	}

	err := c.RefService.SetAspectOrbs(ctx.Request.Context(), version, aspectCode, req.DefaultOrbDeg, req.OrbLuminaries, req.Overrides)
	if err != nil {
		respond.Error(ctx, c.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"version": version, "aspect_code": aspectCode})
}
