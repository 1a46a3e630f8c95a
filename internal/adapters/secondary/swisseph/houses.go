package swisseph

import (
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

// индексы массива ascmc нативной библиотеки
const (
	ascmcAscendant = 0
	ascmcMC        = 1
)

// houseSystemChar буква системы домов нативной библиотеки
func houseSystemChar(houseSystem string) (int, bool) {
	switch houseSystem {
	case domain.HouseSystemPlacidus:
		return 'P', true
	case domain.HouseSystemEqual:
		return 'E', true
	case domain.HouseSystemWholeSign:
		return 'W', true
	default:
		return 0, false
	}
}

// CalculateHouses двенадцать куспидов плюс Асцендент и MC.
// Нативный массив куспидов бывает 12- и 13-элементным; 13-элементная
// форма несёт неиспользуемый нулевой слот, он пропускается.
func (e *Engine) CalculateHouses(jdUT float64, lat, lon float64, houseSystem string, opts ephemeris.CalcOptions) (*domain.HouseSet, error) {
	hsys, ok := houseSystemChar(houseSystem)
	if !ok {
		return nil, domain.NewEngineError(domain.ErrCodeUnsupportedHouseSystem, "unsupported house system").
			WithDetail("house_system", houseSystem)
	}

	cusps := make([]float64, 13)
	ascmc := make([]float64, 10)

	err := e.withGlobals(opts, func(flags int) error {
		if rc := e.native.Houses(jdUT, lat, lon, hsys, cusps, ascmc); rc == seErr {
			e.housesFailures.Add(1)
			e.log.Error("native houses calculation failed",
				"house_system", houseSystem,
				"jd_ut", jdUT,
				"lat", lat,
				"lon", lon,
			)
			return domain.NewEngineError(domain.ErrCodeHousesCalcFailed, "native houses calculation failed").
				WithDetail("house_system", houseSystem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	houses, err := cuspsFromNative(cusps)
	if err != nil {
		return nil, err
	}

	return &domain.HouseSet{
		Houses:             houses,
		AscendantLongitude: normalizeLongitude(ascmc[ascmcAscendant]),
		MCLongitude:        normalizeLongitude(ascmc[ascmcMC]),
		HouseSystem:        houseSystem,
	}, nil
}

// cuspsFromNative нормализует 12- или 13-элементный массив куспидов
func cuspsFromNative(cusps []float64) ([]domain.House, error) {
	var raw []float64
	switch len(cusps) {
	case 13:
		raw = cusps[1:]
	case 12:
		raw = cusps
	default:
		return nil, domain.NewEngineError(domain.ErrCodeHousesCalcFailed, "unexpected cusp array shape").
			WithDetail("length", len(cusps))
	}

	houses := make([]domain.House, 12)
	for i, cusp := range raw {
		houses[i] = domain.House{
			Number:        i + 1,
			CuspLongitude: normalizeLongitude(cusp),
		}
	}
	return houses, nil
}
