package reference

import (
	"log/slog"

	ports "github.com/daconrilcy/horoscope-front-sub002/internal/ports/repository"
)

// Service бизнес-логика версионированного справочника
type Service struct {
	Repo ports.IReferenceRepo
	Log  *slog.Logger

	// DefaultVersion активная версия, когда вызывающий её не указал
	DefaultVersion string
}

// New создаёт сервис справочника
func New(repo ports.IReferenceRepo, defaultVersion string, log *slog.Logger) *Service {
	return &Service{
		Repo:           repo,
		Log:            log,
		DefaultVersion: defaultVersion,
	}
}
