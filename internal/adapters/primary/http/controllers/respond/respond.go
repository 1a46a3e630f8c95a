package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// Error маппит ошибку движка на HTTP-ответ со стабильным кодом.
// Неизвестные ошибки не раскрываются наружу и уходят как 500.
func Error(ctx *gin.Context, log *slog.Logger, err error) {
	var engErr *domain.EngineError
	if errors.As(err, &engErr) {
		body := gin.H{
			"code":    engErr.Code,
			"message": engErr.Message,
		}
		if len(engErr.Details) > 0 {
			body["details"] = engErr.Details
		}
		ctx.JSON(engErr.HTTPStatus(), gin.H{"error": body})
		return
	}

	log.Error("unhandled error", "error", err, "path", ctx.Request.URL.Path)
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "internal_error", "message": "internal server error"},
	})
}
