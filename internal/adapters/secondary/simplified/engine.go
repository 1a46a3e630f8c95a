package simplified

import (
	"log/slog"
	"math"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
)

// Engine упрощённый движок эфемерид пониженной точности.
//
// Деградированный режим: позиции считаются по усечённым средним элементам
// орбит (точность порядка долей градуса), без нативной библиотеки и без
// глобального состояния. В golden-допуски этот движок не входит и
// включается только явным выбором ENGINE=simplified.
type Engine struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Engine {
	return &Engine{log: log}
}

// Name имя движка в результатах расчёта
func (e *Engine) Name() string {
	return domain.EngineSimplified
}

// шаг численного дифференцирования скорости, в сутках
const speedStepDays = 0.01

// CalculatePlanets приближённые геоцентрические позиции десяти тел.
// Скорость по долготе получается численным дифференцированием.
func (e *Engine) CalculatePlanets(jdUT float64, opts ephemeris.CalcOptions) ([]domain.PlanetPosition, error) {
	if opts.Frame == domain.FrameTopocentric && (opts.Lat == nil || opts.Lon == nil) {
		return nil, domain.NewEngineError(domain.ErrCodeEphemerisCalcFailed,
			"topocentric frame requires lat and lon")
	}

	codes := []string{"sun", "moon", "mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune", "pluto"}
	positions := make([]domain.PlanetPosition, 0, len(codes))

	shift := 0.0
	if opts.Zodiac == domain.ZodiacSidereal {
		shift = lahiriAyanamsa(jdUT)
	}

	for _, code := range codes {
		lon0, lat0 := geocentricPosition(code, jdUT)
		lon1, _ := geocentricPosition(code, jdUT+speedStepDays)

		speed := shortestArc(lon1-lon0) / speedStepDays
		positions = append(positions, domain.PlanetPosition{
			PlanetCode:     code,
			Longitude:      normalize(lon0 - shift),
			Latitude:       lat0,
			SpeedLongitude: speed,
			IsRetrograde:   speed < 0,
		})
	}

	return positions, nil
}

// CalculateHouses дома в упрощённом режиме.
// Placidus здесь не реализуем; equal и whole_sign строятся от Асцендента,
// полученного из местного звёздного времени.
func (e *Engine) CalculateHouses(jdUT float64, lat, lon float64, houseSystem string, opts ephemeris.CalcOptions) (*domain.HouseSet, error) {
	switch houseSystem {
	case domain.HouseSystemEqual, domain.HouseSystemWholeSign:
	case domain.HouseSystemPlacidus:
		return nil, domain.NewEngineError(domain.ErrCodeUnsupportedHouseSystem,
			"placidus is not available in simplified mode").
			WithDetail("house_system", houseSystem)
	default:
		return nil, domain.NewEngineError(domain.ErrCodeUnsupportedHouseSystem, "unsupported house system").
			WithDetail("house_system", houseSystem)
	}

	asc := ascendant(jdUT, lat, lon)
	mc := midheaven(jdUT, lon)

	first := asc
	if houseSystem == domain.HouseSystemWholeSign {
		first = math.Floor(asc/30.0) * 30.0
	}

	houses := make([]domain.House, 12)
	for i := range houses {
		houses[i] = domain.House{
			Number:        i + 1,
			CuspLongitude: normalize(first + float64(i)*30.0),
		}
	}

	return &domain.HouseSet{
		Houses:             houses,
		AscendantLongitude: normalize(asc),
		MCLongitude:        normalize(mc),
		HouseSystem:        houseSystem,
	}, nil
}

// orbitalElements усечённые средние элементы орбиты на момент d суток от J2000-эпохи алгоритма
type orbitalElements struct {
	n, i, w, a, e, m float64
}

// elementsFor средние элементы по Шлютеру: линейные функции времени
func elementsFor(code string, d float64) orbitalElements {
	switch code {
	case "mercury":
		return orbitalElements{48.3313 + 3.24587e-5*d, 7.0047 + 5.00e-8*d, 29.1241 + 1.01444e-5*d, 0.387098, 0.205635 + 5.59e-10*d, 168.6562 + 4.0923344368*d}
	case "venus":
		return orbitalElements{76.6799 + 2.46590e-5*d, 3.3946 + 2.75e-8*d, 54.8910 + 1.38374e-5*d, 0.723330, 0.006773 - 1.302e-9*d, 48.0052 + 1.6021302244*d}
	case "mars":
		return orbitalElements{49.5574 + 2.11081e-5*d, 1.8497 - 1.78e-8*d, 286.5016 + 2.92961e-5*d, 1.523688, 0.093405 + 2.516e-9*d, 18.6021 + 0.5240207766*d}
	case "jupiter":
		return orbitalElements{100.4542 + 2.76854e-5*d, 1.3030 - 1.557e-7*d, 273.8777 + 1.64505e-5*d, 5.20256, 0.048498 + 4.469e-9*d, 19.8950 + 0.0830853001*d}
	case "saturn":
		return orbitalElements{113.6634 + 2.38980e-5*d, 2.4886 - 1.081e-7*d, 339.3939 + 2.97661e-5*d, 9.55475, 0.055546 - 9.499e-9*d, 316.9670 + 0.0334442282*d}
	case "uranus":
		return orbitalElements{74.0005 + 1.3978e-5*d, 0.7733 + 1.9e-8*d, 96.6612 + 3.0565e-5*d, 19.18171 - 1.55e-8*d, 0.047318 + 7.45e-9*d, 142.5905 + 0.011725806*d}
	case "neptune":
		return orbitalElements{131.7806 + 3.0173e-5*d, 1.7700 - 2.55e-7*d, 272.8461 - 6.027e-6*d, 30.05826 + 3.313e-8*d, 0.008606 + 2.15e-9*d, 260.2471 + 0.005995147*d}
	default: // pluto считается отдельной эмпирической моделью ниже
		return orbitalElements{}
	}
}

// geocentricPosition приближённая геоцентрическая эклиптическая долгота и широта
func geocentricPosition(code string, jdUT float64) (lonDeg, latDeg float64) {
	d := jdUT - 2451543.5

	switch code {
	case "sun":
		lon, _ := sunPosition(d)
		return lon, 0
	case "moon":
		return moonPosition(d)
	case "pluto":
		return plutoPosition(d)
	}

	el := elementsFor(code, d)
	xh, yh, zh := heliocentric(el)

	// позиция Солнца для перехода к геоцентру
	slon, sr := sunPosition(d)
	xs := sr * cosd(slon)
	ys := sr * sind(slon)

	xg := xh + xs
	yg := yh + ys
	zg := zh

	lon := atan2d(yg, xg)
	lat := atan2d(zg, math.Sqrt(xg*xg+yg*yg))
	return normalize(lon), lat
}

// sunPosition долгота Солнца и радиус-вектор Земли
func sunPosition(d float64) (lonDeg, r float64) {
	w := 282.9404 + 4.70935e-5*d
	e := 0.016709 - 1.151e-9*d
	m := normalize(356.0470 + 0.9856002585*d)

	ea := m + e*(180.0/math.Pi)*sind(m)*(1.0+e*cosd(m))
	xv := cosd(ea) - e
	yv := math.Sqrt(1.0-e*e) * sind(ea)
	v := atan2d(yv, xv)
	r = math.Sqrt(xv*xv + yv*yv)

	return normalize(v + w), r
}

// moonPosition долгота и широта Луны с главными возмущениями
func moonPosition(d float64) (lonDeg, latDeg float64) {
	el := orbitalElements{
		n: 125.1228 - 0.0529538083*d,
		i: 5.1454,
		w: 318.0634 + 0.1643573223*d,
		a: 60.2666, // земных радиусов, масштаб не важен для углов
		e: 0.054900,
		m: normalize(115.3654 + 13.0649929509*d),
	}

	xh, yh, zh := heliocentric(el)
	lon := atan2d(yh, xh)
	lat := atan2d(zh, math.Sqrt(xh*xh+yh*yh))

	// аргументы возмущений: средняя аномалия Солнца ms, его средняя
	// долгота ls, средняя долгота Луны lm, элонгация dm и аргумент широты f
	ms := normalize(356.0470 + 0.9856002585*d)
	ws := 282.9404 + 4.70935e-5*d
	ls := normalize(ms + ws)
	lm := normalize(el.n + el.w + el.m)
	mm := el.m
	dm := normalize(lm - ls)
	f := normalize(lm - el.n)

	lon += -1.274*sind(mm-2*dm) +
		0.658*sind(2*dm) -
		0.186*sind(ms) -
		0.059*sind(2*mm-2*dm) -
		0.057*sind(mm-2*dm+ms) +
		0.053*sind(mm+2*dm) +
		0.046*sind(2*dm-ms) +
		0.041*sind(mm-ms) -
		0.035*sind(dm) -
		0.031*sind(mm+ms)

	lat += -0.173*sind(f-2*dm) -
		0.055*sind(mm-f-2*dm) -
		0.046*sind(mm+f-2*dm) +
		0.033*sind(f+2*dm) +
		0.017*sind(2*mm+f)

	return normalize(lon), lat
}

// plutoPosition эмпирическая модель Плутона, валидна примерно 1900-2100
func plutoPosition(d float64) (lonDeg, latDeg float64) {
	s := 50.03 + 0.033459652*d
	p := 238.95 + 0.003968789*d

	lon := 238.9508 + 0.00400703*d -
		19.799*sind(p) + 19.848*cosd(p) +
		0.897*sind(2*p) - 4.956*cosd(2*p) +
		0.610*sind(3*p) + 1.211*cosd(3*p) -
		0.341*sind(4*p) - 0.190*cosd(4*p) +
		0.128*sind(5*p) - 0.034*cosd(5*p) -
		0.038*sind(6*p) + 0.031*cosd(6*p) +
		0.020*sind(s-p) - 0.010*cosd(s-p)

	lat := -3.9082 -
		5.453*sind(p) - 14.975*cosd(p) +
		3.527*sind(2*p) + 1.673*cosd(2*p) -
		1.051*sind(3*p) + 0.328*cosd(3*p) +
		0.179*sind(4*p) - 0.292*cosd(4*p) +
		0.019*sind(5*p) + 0.100*cosd(5*p) -
		0.031*sind(6*p) - 0.026*cosd(6*p) +
		0.011*cosd(s-p)

	return normalize(lon), lat
}

// heliocentric решает уравнение Кеплера и возвращает эклиптические координаты
func heliocentric(el orbitalElements) (x, y, z float64) {
	m := normalize(el.m)

	// итерации Ньютона до сходимости 1e-6 градуса
	ea := m + (180.0/math.Pi)*el.e*sind(m)*(1.0+el.e*cosd(m))
	for iter := 0; iter < 20; iter++ {
		delta := (ea - (180.0/math.Pi)*el.e*sind(ea) - m) / (1.0 - el.e*cosd(ea))
		ea -= delta
		if math.Abs(delta) < 1e-6 {
			break
		}
	}

	xv := el.a * (cosd(ea) - el.e)
	yv := el.a * math.Sqrt(1.0-el.e*el.e) * sind(ea)
	v := atan2d(yv, xv)
	r := math.Sqrt(xv*xv + yv*yv)

	x = r * (cosd(el.n)*cosd(v+el.w) - sind(el.n)*sind(v+el.w)*cosd(el.i))
	y = r * (sind(el.n)*cosd(v+el.w) + cosd(el.n)*sind(v+el.w)*cosd(el.i))
	z = r * sind(v+el.w) * sind(el.i)
	return x, y, z
}

// ascendant Асцендент из местного звёздного времени и наклона эклиптики
func ascendant(jdUT, lat, lon float64) float64 {
	lst := localSiderealTime(jdUT, lon)
	eps := 23.4393 - 3.563e-7*(jdUT-2451543.5)

	asc := atan2d(cosd(lst), -(sind(lst)*cosd(eps) + tand(lat)*sind(eps)))
	return normalize(asc)
}

// midheaven MC из местного звёздного времени
func midheaven(jdUT, lon float64) float64 {
	lst := localSiderealTime(jdUT, lon)
	eps := 23.4393 - 3.563e-7*(jdUT-2451543.5)
	return normalize(atan2d(sind(lst), cosd(lst)*cosd(eps)))
}

// lahiriAyanamsa линейное приближение аянамсы Лахири (~50.29"/год от J2000)
func lahiriAyanamsa(jdUT float64) float64 {
	years := (jdUT - 2451545.0) / 365.25
	return 23.85 + years*50.29/3600.0
}

// localSiderealTime местное звёздное время в градусах
func localSiderealTime(jdUT, lon float64) float64 {
	t := (jdUT - 2451545.0) / 36525.0
	gmst := 280.46061837 + 360.98564736629*(jdUT-2451545.0) + 0.000387933*t*t - t*t*t/38710000.0
	return normalize(gmst + lon)
}

func sind(deg float64) float64 { return math.Sin(deg * math.Pi / 180.0) }
func cosd(deg float64) float64 { return math.Cos(deg * math.Pi / 180.0) }
func tand(deg float64) float64 { return math.Tan(deg * math.Pi / 180.0) }
func atan2d(y, x float64) float64 {
	return math.Atan2(y, x) * 180.0 / math.Pi
}

func normalize(deg float64) float64 {
	n := math.Mod(deg, 360.0)
	if n < 0 {
		n += 360.0
	}
	return n
}

// shortestArc разница долгот в (-180, 180]
func shortestArc(deg float64) float64 {
	a := math.Mod(deg+180.0, 360.0)
	if a < 0 {
		a += 360.0
	}
	return a - 180.0
}
