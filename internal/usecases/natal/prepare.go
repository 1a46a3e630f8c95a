package natal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

const (
	// JD момента Unix-эпохи 1970-01-01T00:00:00Z
	jdUnixEpoch = 2440587.5

	secondsPerDay = 86400.0

	// подстановка для политики неизвестного времени рождения
	defaultHour   = 12
	defaultMinute = 0

	isoOffsetLayout = "2006-01-02T15:04:05-07:00"
)

var birthTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// PrepareBirth подготовка времени в составе сервиса
func (s *Service) PrepareBirth(input domain.BirthInput) (*domain.PreparedInput, error) {
	return PrepareBirth(input)
}

// PrepareBirth валидирует вход и детерминированно готовит временные
// координаты: локальное и UTC время с офсетами, Unix-метку, JD(UT) и,
// при tt_enabled, ΔT с JD(TT).
func PrepareBirth(input domain.BirthInput) (*domain.PreparedInput, error) {
	year, month, day, err := parseBirthDate(input.BirthDate)
	if err != nil {
		return nil, err
	}

	hour, minute := defaultHour, defaultMinute
	missingTime := input.BirthTime == nil
	if !missingTime {
		hour, minute, err = parseBirthTime(*input.BirthTime)
		if err != nil {
			return nil, err
		}
	}

	if input.BirthTimezone == "" {
		return nil, domain.NewEngineError(domain.ErrCodeInvalidTimezone, "birth timezone is required")
	}
	loc, err := time.LoadLocation(input.BirthTimezone)
	if err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeInvalidTimezone, "unknown IANA timezone").
			WithDetail("timezone", input.BirthTimezone).
			WithCause(err)
	}

	if err := validateCoordinates(input.BirthLat, input.BirthLon); err != nil {
		return nil, err
	}

	local := resolveCivil(year, time.Month(month), day, hour, minute, loc)
	utc := local.UTC()

	timestamp := utc.Unix()
	jdUT := jdUnixEpoch + float64(timestamp)/secondsPerDay

	prepared := &domain.PreparedInput{
		BirthDatetimeLocal: local.Format(isoOffsetLayout),
		BirthDatetimeUTC:   utc.Format(isoOffsetLayout),
		TimestampUTC:       timestamp,
		JulianDay:          jdUT,
		TimezoneUsed:       input.BirthTimezone,
		TimeScale:          domain.TimeScaleUT,
		MissingBirthTime:   missingTime,
	}

	if input.TTEnabled {
		deltaT := deltaTSeconds(float64(year) + (float64(month)-0.5)/12.0)
		jdTT := jdUT + deltaT/secondsPerDay
		prepared.DeltaTSec = &deltaT
		prepared.JDTT = &jdTT
		prepared.TimeScale = domain.TimeScaleTT
	}

	return prepared, nil
}

// parseBirthDate строгий разбор даты YYYY-MM-DD, год в [1, 9999]
func parseBirthDate(birthDate string) (year, month, day int, err error) {
	parts := strings.Split(birthDate, "-")
	if len(parts) != 3 {
		return 0, 0, 0, domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "birth_date must be YYYY-MM-DD").
			WithDetail("birth_date", birthDate)
	}

	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return 0, 0, 0, domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "birth_date must be numeric YYYY-MM-DD").
			WithDetail("birth_date", birthDate)
	}

	if year < 1 || year > 9999 {
		return 0, 0, 0, domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "birth year out of range").
			WithDetail("year", year)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "birth date component out of range").
			WithDetail("birth_date", birthDate)
	}

	// отклоняем несуществующие даты вроде 02-30: нормализация time.Date меняет компоненты
	probe := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if probe.Year() != year || int(probe.Month()) != month || probe.Day() != day {
		return 0, 0, 0, domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "birth date does not exist").
			WithDetail("birth_date", birthDate)
	}

	return year, month, day, nil
}

// parseBirthTime строгий разбор HH:MM, H в [0,23], M в [0,59]
func parseBirthTime(birthTime string) (hour, minute int, err error) {
	m := birthTimeRe.FindStringSubmatch(birthTime)
	if m == nil {
		return 0, 0, domain.NewEngineError(domain.ErrCodeInvalidBirthTime, "birth_time must be HH:MM").
			WithDetail("birth_time", birthTime)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

func validateCoordinates(lat, lon *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "latitude out of range").
			WithDetail("lat", *lat)
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "longitude out of range").
			WithDetail("lon", *lon)
	}
	if (lat == nil) != (lon == nil) {
		return domain.NewEngineError(domain.ErrCodeInvalidBirthInput, "lat and lon must be provided together")
	}
	return nil
}

// resolveCivil интерпретирует настенное время в исторической зоне IANA.
// Семантика переходов: несуществующее время (весенний пропуск) разрешается
// офсетом после перехода, неоднозначное время (осенний повтор) - более
// ранним моментом. Никаких фиксированных офсетов: только база tzdata.
func resolveCivil(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	utcGuess := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	// офсеты до и после возможного перехода; любой переход, влияющий на
	// эту настенную метку, лежит в пределах +-14 часов от utcGuess
	offBefore := zoneOffset(utcGuess.Add(-24*time.Hour), loc)
	offAfter := zoneOffset(utcGuess.Add(24*time.Hour), loc)

	candBefore := utcGuess.Add(-time.Duration(offBefore) * time.Second)
	candAfter := utcGuess.Add(-time.Duration(offAfter) * time.Second)

	matchBefore := sameWall(candBefore.In(loc), year, month, day, hour, minute)
	matchAfter := sameWall(candAfter.In(loc), year, month, day, hour, minute)

	switch {
	case matchBefore && matchAfter:
		// либо перехода нет (кандидаты совпадают), либо повтор - берём более ранний момент
		if candBefore.Before(candAfter) {
			return candBefore.In(loc)
		}
		return candAfter.In(loc)
	case matchBefore:
		return candBefore.In(loc)
	case matchAfter:
		return candAfter.In(loc)
	default:
		// пропуск: метки не существует, применяем офсет после перехода
		return candAfter.In(loc)
	}
}

func zoneOffset(t time.Time, loc *time.Location) int {
	_, offset := t.In(loc).Zone()
	return offset
}

func sameWall(t time.Time, year int, month time.Month, day, hour, minute int) bool {
	return t.Year() == year && t.Month() == month && t.Day() == day &&
		t.Hour() == hour && t.Minute() == minute
}
