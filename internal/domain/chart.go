package domain

import (
	"encoding/json"
	"time"
)

// Движки расчёта
const (
	EngineSwisseph   = "swisseph"
	EngineSimplified = "simplified" // деградированный режим, вне golden-допусков
)

// Зодиак и система координат
const (
	ZodiacTropical = "tropical"
	ZodiacSidereal = "sidereal"

	FrameGeocentric  = "geocentric"
	FrameTopocentric = "topocentric"

	AyanamsaLahiri = "lahiri"
)

// Поддерживаемые системы домов
const (
	HouseSystemPlacidus  = "placidus"
	HouseSystemEqual     = "equal"
	HouseSystemWholeSign = "whole_sign"
)

// PlanetPosition позиция планеты в эклиптических координатах
type PlanetPosition struct {
	PlanetCode     string  `json:"planet_code"`
	Longitude      float64 `json:"longitude"` // [0,360)
	Latitude       float64 `json:"latitude"`
	SpeedLongitude float64 `json:"speed_longitude"` // град/сутки
	IsRetrograde   bool    `json:"is_retrograde"`   // speed_longitude < 0
	SignCode       string  `json:"sign_code"`
}

// House куспид одного дома
type House struct {
	Number        int     `json:"number"` // 1..12
	CuspLongitude float64 `json:"cusp_longitude"`
}

// HouseSet двенадцать куспидов плюс углы
type HouseSet struct {
	Houses             []House `json:"houses"`
	AscendantLongitude float64 `json:"ascendant_longitude"`
	MCLongitude        float64 `json:"mc_longitude"`
	HouseSystem        string  `json:"house_system"`
}

// Aspect мажорный аспект между двумя планетами.
// planet_a < planet_b лексикографически.
type Aspect struct {
	AspectCode string  `json:"aspect_code"`
	PlanetA    string  `json:"planet_a"`
	PlanetB    string  `json:"planet_b"`
	Angle      float64 `json:"angle"` // идеальный угол
	Orb        float64 `json:"orb"`   // |distance - angle|
	OrbUsed    float64 `json:"orb_used"`
}

// NatalResult полный результат расчёта натальной карты
type NatalResult struct {
	ReferenceVersion string           `json:"reference_version"`
	RulesetVersion   string           `json:"ruleset_version"`
	Engine           string           `json:"engine"`
	HouseSystem      string           `json:"house_system"`
	PreparedInput    PreparedInput    `json:"prepared_input"`
	PlanetPositions  []PlanetPosition `json:"planet_positions"`
	Houses           []House          `json:"houses"`
	Aspects          []Aspect         `json:"aspects"`
	Ascendant        *float64         `json:"ascendant,omitempty"` // nil при политике неизвестного времени
	MC               *float64         `json:"mc,omitempty"`
	MissingBirthTime bool             `json:"missing_birth_time,omitempty"`
}

// ChartResultRecord запись аудита сохранённого результата. Write-once.
type ChartResultRecord struct {
	ChartID          string          `db:"chart_id" json:"chart_id"` // UUID v4
	UserID           *string         `db:"user_id" json:"user_id,omitempty"`
	ReferenceVersion string          `db:"reference_version" json:"reference_version"`
	RulesetVersion   string          `db:"ruleset_version" json:"ruleset_version"`
	InputHash        string          `db:"input_hash" json:"input_hash"` // SHA-256 канонического JSON
	ResultPayload    json.RawMessage `db:"result_payload" json:"result_payload"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// AstroProfile пользовательский срез результата.
// Асцендент и дома опускаются когда время рождения неизвестно.
type AstroProfile struct {
	SunSign          string           `json:"sun_sign"`
	MoonSign         string           `json:"moon_sign"`
	AscendantSign    *string          `json:"ascendant_sign,omitempty"`
	Planets          []PlanetPosition `json:"planets"`
	Houses           []House          `json:"houses,omitempty"`
	Aspects          []Aspect         `json:"aspects"`
	MissingBirthTime bool             `json:"missing_birth_time"`
}
