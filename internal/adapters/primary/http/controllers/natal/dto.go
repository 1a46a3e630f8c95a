package natalController

import (
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// CalculateRequest тело запроса расчёта натальной карты
type CalculateRequest struct {
	BirthDate        string   `json:"birth_date"`
	BirthTime        *string  `json:"birth_time,omitempty"`
	BirthPlace       string   `json:"birth_place,omitempty"`
	BirthTimezone    string   `json:"birth_timezone"`
	BirthLat         *float64 `json:"birth_lat,omitempty"`
	BirthLon         *float64 `json:"birth_lon,omitempty"`
	TTEnabled        bool     `json:"tt_enabled,omitempty"`
	ReferenceVersion string   `json:"reference_version,omitempty"`
	UserID           *string  `json:"user_id,omitempty"`
	Persist          bool     `json:"persist,omitempty"`
	WithProfile      bool     `json:"with_profile,omitempty"`
}

func (r *CalculateRequest) birthInput() domain.BirthInput {
	return domain.BirthInput{
		BirthDate:     r.BirthDate,
		BirthTime:     r.BirthTime,
		BirthPlace:    r.BirthPlace,
		BirthTimezone: r.BirthTimezone,
		BirthLat:      r.BirthLat,
		BirthLon:      r.BirthLon,
		TTEnabled:     r.TTEnabled,
	}
}

// CalculateResponse результат расчёта, опционально с трассой и профилем
type CalculateResponse struct {
	Result    *domain.NatalResult  `json:"result"`
	ChartID   string               `json:"chart_id,omitempty"`
	InputHash string               `json:"input_hash,omitempty"`
	Profile   *domain.AstroProfile `json:"profile,omitempty"`
}
