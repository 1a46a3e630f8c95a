package swisseph

import (
	"github.com/mshafiee/swephgo"
)

// Канонические константы Swiss Ephemeris. Определены локально, чтобы не
// зависеть от имён констант биндинга.
const (
	seSun     = 0
	seMoon    = 1
	seMercury = 2
	seVenus   = 3
	seMars    = 4
	seJupiter = 5
	seSaturn  = 6
	seUranus  = 7
	seNeptune = 8
	sePluto   = 9

	seflgSwieph   = 2
	seflgSpeed    = 256
	seflgTopoctr  = 32 * 1024
	seflgSidereal = 64 * 1024

	seErr = -1

	sidmFaganBradley = 0
	sidmLahiri       = 1
	sidmRaman        = 3
	sidmKrishnamurti = 5
)

// nativeAPI поверхность нативной библиотеки, используемая адаптером.
// Интерфейс нужен чтобы тесты могли подменить библиотеку фейком и
// проверить дисциплину работы с глобальным состоянием.
type nativeAPI interface {
	CalcUT(jdUT float64, planet int, flags int, result []float64, serr []byte) int32
	Houses(jdUT float64, lat, lon float64, hsys int, cusps, ascmc []float64) int32
	SetSidMode(mode int32, t0, ayanT0 float64)
	SetTopo(lon, lat, altitude float64)
	SetEphePath(path string)
	Close()
}

// swephNative реализация nativeAPI поверх swephgo (cgo-биндинг Swiss Ephemeris)
type swephNative struct{}

func (swephNative) CalcUT(jdUT float64, planet int, flags int, result []float64, serr []byte) int32 {
	return swephgo.CalcUt(jdUT, planet, flags, result, serr)
}

func (swephNative) Houses(jdUT float64, lat, lon float64, hsys int, cusps, ascmc []float64) int32 {
	return swephgo.Houses(jdUT, lat, lon, hsys, cusps, ascmc)
}

func (swephNative) SetSidMode(mode int32, t0, ayanT0 float64) {
	swephgo.SetSidMode(int(mode), t0, ayanT0)
}

func (swephNative) SetTopo(lon, lat, altitude float64) {
	swephgo.SetTopo(lon, lat, altitude)
}

func (swephNative) SetEphePath(path string) {
	swephgo.SetEphePath([]byte(path))
}

func (swephNative) Close() {
	swephgo.Close()
}
