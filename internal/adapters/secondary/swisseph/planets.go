package swisseph

import (
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

// десять тел в порядке объявления Sun..Pluto
var planetOrder = []struct {
	code   string
	native int
}{
	{"sun", seSun},
	{"moon", seMoon},
	{"mercury", seMercury},
	{"venus", seVenus},
	{"mars", seMars},
	{"jupiter", seJupiter},
	{"saturn", seSaturn},
	{"uranus", seUranus},
	{"neptune", seNeptune},
	{"pluto", sePluto},
}

// CalculatePlanets позиции десяти тел для момента jdUT.
// Результат: долгота в [0,360), широта, скорость по долготе и флаг
// ретроградности (отрицательная скорость). Знак проставляет оркестратор.
func (e *Engine) CalculatePlanets(jdUT float64, opts ephemeris.CalcOptions) ([]domain.PlanetPosition, error) {
	positions := make([]domain.PlanetPosition, 0, len(planetOrder))

	err := e.withGlobals(opts, func(flags int) error {
		for _, p := range planetOrder {
			result := make([]float64, 6)
			serr := make([]byte, 256)

			if rc := e.native.CalcUT(jdUT, p.native, flags, result, serr); rc == seErr {
				e.calcFailures.Add(1)
				e.log.Error("native planet calculation failed",
					"planet", p.code,
					"jd_ut", jdUT,
					"native_error", nativeError(serr),
				)
				return domain.NewEngineError(domain.ErrCodeEphemerisCalcFailed, "native calculation failed").
					WithDetail("planet", p.code)
			}

			speed := result[3]
			positions = append(positions, domain.PlanetPosition{
				PlanetCode:     p.code,
				Longitude:      normalizeLongitude(result[0]),
				Latitude:       result[1],
				SpeedLongitude: speed,
				IsRetrograde:   speed < 0,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return positions, nil
}
