package ephemeris

import (
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

// CalcOptions опции расчёта, передаются явно вниз по стеку.
// Никакого модульного состояния: вся конфигурация в этом значении.
type CalcOptions struct {
	Zodiac    string // tropical | sidereal
	Ayanamsa  string // используется только при sidereal, по умолчанию lahiri
	Frame     string // geocentric | topocentric
	Lat       *float64
	Lon       *float64
	AltitudeM float64
}

// IEngine движок эфемерид. Реализации: swisseph (нативная библиотека) и
// simplified (деградированный режим пониженной точности).
// Вызовы сериализуются внутри реализации, глобальное состояние нативной
// библиотеки восстанавливается до нейтрального на всех путях выхода.
type IEngine interface {
	// CalculatePlanets позиции десяти тел Sun..Pluto в порядке объявления
	CalculatePlanets(jdUT float64, opts CalcOptions) ([]domain.PlanetPosition, error)
	// CalculateHouses двенадцать куспидов плюс ASC и MC
	CalculateHouses(jdUT float64, lat, lon float64, houseSystem string, opts CalcOptions) (*domain.HouseSet, error)
	// Name имя движка для поля engine результата
	Name() string
}
