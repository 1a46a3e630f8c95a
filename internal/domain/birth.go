package domain

// BirthInput входные данные рождения. Неизменяемы после валидации.
// BirthPlace используется только для логирования, в расчётах не участвует.
type BirthInput struct {
	BirthDate     string   `json:"birth_date"`           // YYYY-MM-DD, григорианский календарь
	BirthTime     *string  `json:"birth_time,omitempty"` // HH:MM, nil включает политику неизвестного времени
	BirthPlace    string   `json:"birth_place,omitempty"`
	BirthTimezone string   `json:"birth_timezone"` // идентификатор зоны IANA
	BirthLat      *float64 `json:"birth_lat,omitempty"`
	BirthLon      *float64 `json:"birth_lon,omitempty"`
	TTEnabled     bool     `json:"tt_enabled,omitempty"`
}

// Шкалы времени подготовленного входа
const (
	TimeScaleUT = "UT"
	TimeScaleTT = "TT"
)

// PreparedInput детерминированный результат подготовки времени.
// Значение, не сущность: нигде не персистится.
type PreparedInput struct {
	BirthDatetimeLocal string   `json:"birth_datetime_local"` // ISO-8601 с офсетом
	BirthDatetimeUTC   string   `json:"birth_datetime_utc"`
	TimestampUTC       int64    `json:"timestamp_utc"`
	JulianDay          float64  `json:"julian_day"` // JD в шкале UT, каноническая координата
	TimezoneUsed       string   `json:"birth_timezone"`
	DeltaTSec          *float64 `json:"delta_t_sec,omitempty"` // не nil только при tt_enabled
	JDTT               *float64 `json:"jd_tt,omitempty"`
	TimeScale          string   `json:"time_scale"`
	MissingBirthTime   bool     `json:"missing_birth_time,omitempty"`
}
