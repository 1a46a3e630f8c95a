package domain

import (
	"sort"
	"strings"
	"time"
)

// ReferenceVersion версионированный справочник, параметризующий расчёты.
// После is_locked=true все дочерние строки неизменяемы навсегда;
// правки делаются клонированием в новую версию.
type ReferenceVersion struct {
	ID        string    `db:"id"`
	Version   string    `db:"version"`
	IsLocked  bool      `db:"is_locked"`
	CreatedAt time.Time `db:"created_at"`
}

// ReferencePlanet планета справочника
type ReferencePlanet struct {
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Position int    `db:"position" json:"position"` // порядок объявления Sun..Pluto
}

// ReferenceSign знак зодиака справочника
type ReferenceSign struct {
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Position int    `db:"position" json:"position"` // тропический порядок, aries=1
}

// ReferenceHouse дом справочника
type ReferenceHouse struct {
	Number int    `db:"number" json:"number"` // 1..12
	Name   string `db:"name" json:"name"`
}

// ReferenceAspect аспект справочника с орбами.
// OrbOverrides ключуется канонической парой планет (см. PairKey).
type ReferenceAspect struct {
	Code          string             `json:"code"`
	AngleDeg      float64            `json:"angle_deg"` // 0/60/90/120/180 для пяти мажоров
	DefaultOrbDeg float64            `json:"default_orb_deg"`
	OrbLuminaries *float64           `json:"orb_luminaries,omitempty"`
	OrbOverrides  map[string]float64 `json:"orb_overrides,omitempty"`
}

// ReferenceCharacteristic произвольная характеристика сущности справочника
type ReferenceCharacteristic struct {
	EntityType string `db:"entity_type" json:"entity_type"`
	EntityCode string `db:"entity_code" json:"entity_code"`
	Trait      string `db:"trait" json:"trait"`
	Value      string `db:"value" json:"value"`
}

// ReferenceSnapshot read-only срез справочника для расчётов.
// После выдачи из реестра не мутируется.
type ReferenceSnapshot struct {
	Version string            `json:"version"`
	Planets []ReferencePlanet `json:"planets"`
	Signs   []ReferenceSign   `json:"signs"`
	Houses  []ReferenceHouse  `json:"houses"`
	Aspects []ReferenceAspect `json:"aspects"`
}

// PairKey канонический ключ пары планет: lowercase, лексикографическая сортировка, разделитель "-"
func PairKey(a, b string) string {
	p := []string{strings.ToLower(a), strings.ToLower(b)}
	sort.Strings(p)
	return p[0] + "-" + p[1]
}

// IsLuminary светило (Солнце или Луна)
func IsLuminary(planetCode string) bool {
	c := strings.ToLower(planetCode)
	return c == "sun" || c == "moon"
}

// Канонические орбы по умолчанию для пяти мажорных аспектов
const (
	DefaultOrbConjunction = 8.0
	DefaultOrbSextile     = 4.0
	DefaultOrbSquare      = 6.0
	DefaultOrbTrine       = 6.0
	DefaultOrbOpposition  = 8.0
	DefaultOrbOther       = 6.0
)

// DefaultOrbFor орб по умолчанию для кода аспекта
func DefaultOrbFor(aspectCode string) float64 {
	switch aspectCode {
	case "conjunction":
		return DefaultOrbConjunction
	case "sextile":
		return DefaultOrbSextile
	case "square":
		return DefaultOrbSquare
	case "trine":
		return DefaultOrbTrine
	case "opposition":
		return DefaultOrbOpposition
	default:
		return DefaultOrbOther
	}
}

// DefaultPlanets десять тел в порядке объявления Sun..Pluto
func DefaultPlanets() []ReferencePlanet {
	return []ReferencePlanet{
		{Code: "sun", Name: "Sun", Position: 1},
		{Code: "moon", Name: "Moon", Position: 2},
		{Code: "mercury", Name: "Mercury", Position: 3},
		{Code: "venus", Name: "Venus", Position: 4},
		{Code: "mars", Name: "Mars", Position: 5},
		{Code: "jupiter", Name: "Jupiter", Position: 6},
		{Code: "saturn", Name: "Saturn", Position: 7},
		{Code: "uranus", Name: "Uranus", Position: 8},
		{Code: "neptune", Name: "Neptune", Position: 9},
		{Code: "pluto", Name: "Pluto", Position: 10},
	}
}

// DefaultSigns двенадцать знаков в тропическом порядке
func DefaultSigns() []ReferenceSign {
	return []ReferenceSign{
		{Code: "aries", Name: "Aries", Position: 1},
		{Code: "taurus", Name: "Taurus", Position: 2},
		{Code: "gemini", Name: "Gemini", Position: 3},
		{Code: "cancer", Name: "Cancer", Position: 4},
		{Code: "leo", Name: "Leo", Position: 5},
		{Code: "virgo", Name: "Virgo", Position: 6},
		{Code: "libra", Name: "Libra", Position: 7},
		{Code: "scorpio", Name: "Scorpio", Position: 8},
		{Code: "sagittarius", Name: "Sagittarius", Position: 9},
		{Code: "capricorn", Name: "Capricorn", Position: 10},
		{Code: "aquarius", Name: "Aquarius", Position: 11},
		{Code: "pisces", Name: "Pisces", Position: 12},
	}
}

// DefaultHouses двенадцать домов 1..12
func DefaultHouses() []ReferenceHouse {
	houses := make([]ReferenceHouse, 12)
	names := []string{
		"First House", "Second House", "Third House", "Fourth House",
		"Fifth House", "Sixth House", "Seventh House", "Eighth House",
		"Ninth House", "Tenth House", "Eleventh House", "Twelfth House",
	}
	for i := range houses {
		houses[i] = ReferenceHouse{Number: i + 1, Name: names[i]}
	}
	return houses
}

// DefaultAspects пять мажорных аспектов с каноническими орбами
func DefaultAspects() []ReferenceAspect {
	return []ReferenceAspect{
		{Code: "conjunction", AngleDeg: 0, DefaultOrbDeg: DefaultOrbConjunction},
		{Code: "sextile", AngleDeg: 60, DefaultOrbDeg: DefaultOrbSextile},
		{Code: "square", AngleDeg: 90, DefaultOrbDeg: DefaultOrbSquare},
		{Code: "trine", AngleDeg: 120, DefaultOrbDeg: DefaultOrbTrine},
		{Code: "opposition", AngleDeg: 180, DefaultOrbDeg: DefaultOrbOpposition},
	}
}

// SignForLongitude код знака по эклиптической долготе: 30-градусные знаки от Овна (0°)
func SignForLongitude(longitude float64, signs []ReferenceSign) string {
	idx := int(longitude/30.0) % 12
	if idx < 0 {
		idx += 12
	}
	for _, s := range signs {
		if s.Position == idx+1 {
			return s.Code
		}
	}
	return ""
}
