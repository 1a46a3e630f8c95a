package golden

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/ports/ephemeris"
	"github.com/daconrilcy/horoscope-front-sub002/internal/usecases/natal"
)

// ciMarkers переменные окружения, по которым валидатор распознаёт CI.
// Непустое значение, отличное от "0" и "false", означает запуск в CI.
var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILD_BUILDID"}

// recommendedMinCases нижняя граница размера замороженного датасета
const recommendedMinCases = 50

// Validator пересчитывает golden-кейсы на живом движке эфемерид и
// сравнивает долготы с замороженными ожиданиями через круговую дельту.
// Запускается только вручную: в CI выполнение отклоняется.
type Validator struct {
	Engine ephemeris.IEngine
	Log    *slog.Logger
}

func NewValidator(engine ephemeris.IEngine, log *slog.Logger) *Validator {
	return &Validator{Engine: engine, Log: log}
}

// RefuseInCI возвращает ошибку, если окружение похоже на CI.
// Валидация с живыми эфемеридами запускается только вручную.
func RefuseInCI(lookup func(string) string) error {
	if lookup == nil {
		lookup = os.Getenv
	}
	for _, marker := range ciMarkers {
		v := strings.ToLower(strings.TrimSpace(lookup(marker)))
		if v != "" && v != "0" && v != "false" {
			return fmt.Errorf("golden validation is manual-only, refusing to run: %s is set", marker)
		}
	}
	return nil
}

// LoadDataset читает датасет из JSON-файла и проверяет его контракт.
func LoadDataset(path string) (*domain.GoldenDataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read golden dataset: %w", err)
	}
	return ParseDataset(raw)
}

// ParseDataset разбирает и валидирует датасет из сырого JSON.
func ParseDataset(raw []byte) (*domain.GoldenDataset, error) {
	var ds domain.GoldenDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse golden dataset: %w", err)
	}
	if ds.DatasetID == "" {
		return nil, fmt.Errorf("golden dataset: dataset_id is empty")
	}
	if ds.Tolerances.PlanetsDeg <= 0 || ds.Tolerances.AnglesDeg <= 0 {
		return nil, fmt.Errorf("golden dataset: tolerances must be positive")
	}
	if len(ds.Cases) == 0 {
		return nil, fmt.Errorf("golden dataset: no cases")
	}
	seen := make(map[string]struct{}, len(ds.Cases))
	for i, c := range ds.Cases {
		if c.CaseID == "" {
			return nil, fmt.Errorf("golden dataset: case %d has empty case_id", i)
		}
		if _, dup := seen[c.CaseID]; dup {
			return nil, fmt.Errorf("golden dataset: duplicate case_id %q", c.CaseID)
		}
		seen[c.CaseID] = struct{}{}
	}
	return &ds, nil
}

// Run пересчитывает все кейсы и собирает отчёт. Ошибка одного кейса не
// прерывает прогон: кейс помечается проваленным с текстом ошибки.
func (v *Validator) Run(ctx context.Context, ds *domain.GoldenDataset) (*domain.GoldenReport, error) {
	if v.Engine == nil {
		return nil, fmt.Errorf("golden validator: engine is nil")
	}
	if len(ds.Cases) < recommendedMinCases && v.Log != nil {
		v.Log.Warn("golden dataset is smaller than the recommended minimum",
			slog.Int("cases", len(ds.Cases)),
			slog.Int("recommended_min", recommendedMinCases),
		)
	}

	report := &domain.GoldenReport{
		DatasetID:   ds.DatasetID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Cases:       make([]domain.GoldenCaseResult, 0, len(ds.Cases)),
	}
	drift := make(map[string]float64)

	for _, c := range ds.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := v.runCase(c, ds.Tolerances)
		report.Cases = append(report.Cases, res)

		report.Summary.CasesCount++
		if res.Passed {
			report.Summary.PassedCases++
		} else {
			report.Summary.FailedCases++
		}
		for _, m := range res.Metrics {
			if !m.Passed {
				report.Summary.FailedMetrics++
			}
			if m.Delta > drift[m.Metric] {
				drift[m.Metric] = m.Delta
			}
			if m.Delta > report.Summary.MaxDeltaDegrees {
				report.Summary.MaxDeltaDegrees = m.Delta
			}
		}
		if v.Log != nil && !res.Passed {
			v.Log.Warn("golden case failed", slog.String("case_id", c.CaseID), slog.String("error", res.Error))
		}
	}
	report.Summary.DriftByMetric = drift
	return report, nil
}

func (v *Validator) runCase(c domain.GoldenCase, tol domain.GoldenTolerances) domain.GoldenCaseResult {
	result := domain.GoldenCaseResult{CaseID: c.CaseID}

	actual, err := v.recompute(c)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	checks := []struct {
		metric    string
		expected  float64
		actual    float64
		tolerance float64
	}{
		{"sun", c.Expected.Sun, actual.sun, tol.PlanetsDeg},
		{"moon", c.Expected.Moon, actual.moon, tol.PlanetsDeg},
		{"mercury", c.Expected.Mercury, actual.mercury, tol.PlanetsDeg},
		{"asc", c.Expected.Asc, actual.asc, tol.AnglesDeg},
		{"mc", c.Expected.MC, actual.mc, tol.AnglesDeg},
		{"cusp_1", c.Expected.Cusp1, actual.cusp1, tol.AnglesDeg},
		{"cusp_10", c.Expected.Cusp10, actual.cusp10, tol.AnglesDeg},
	}

	result.Passed = true
	for _, ch := range checks {
		delta := circularDeltaDeg(ch.expected, ch.actual)
		passed := delta <= ch.tolerance
		if !passed {
			result.Passed = false
		}
		result.Metrics = append(result.Metrics, domain.GoldenMetricResult{
			Metric:    ch.metric,
			Expected:  ch.expected,
			Actual:    ch.actual,
			Delta:     delta,
			Tolerance: ch.tolerance,
			Passed:    passed,
		})
	}
	return result
}

type caseActuals struct {
	sun, moon, mercury     float64
	asc, mc, cusp1, cusp10 float64
}

// recompute готовит время кейса и считает метрики на живом движке
func (v *Validator) recompute(c domain.GoldenCase) (*caseActuals, error) {
	datePart, timePart, err := splitDatetime(c.Datetime)
	if err != nil {
		return nil, err
	}
	prepared, err := natal.PrepareBirth(domain.BirthInput{
		BirthDate:     datePart,
		BirthTime:     &timePart,
		BirthPlace:    c.PlaceResolved.Name,
		BirthTimezone: c.PlaceResolved.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", c.CaseID, err)
	}

	lat, lon := c.PlaceResolved.Lat, c.PlaceResolved.Lon
	opts := ephemeris.CalcOptions{
		Zodiac: c.Settings.Zodiac,
		Frame:  c.Settings.Frame,
		Lat:    &lat,
		Lon:    &lon,
	}
	if opts.Zodiac == "" {
		opts.Zodiac = domain.ZodiacTropical
	}
	if opts.Frame == "" {
		opts.Frame = domain.FrameGeocentric
	}
	houseSystem := c.Settings.HouseSystem
	if houseSystem == "" {
		houseSystem = domain.HouseSystemPlacidus
	}

	planets, err := v.Engine.CalculatePlanets(prepared.JulianDay, opts)
	if err != nil {
		return nil, fmt.Errorf("planets %s: %w", c.CaseID, err)
	}
	houses, err := v.Engine.CalculateHouses(prepared.JulianDay, lat, lon, houseSystem, opts)
	if err != nil {
		return nil, fmt.Errorf("houses %s: %w", c.CaseID, err)
	}

	actual := &caseActuals{
		asc: houses.AscendantLongitude,
		mc:  houses.MCLongitude,
	}
	for _, p := range planets {
		switch p.PlanetCode {
		case "sun":
			actual.sun = p.Longitude
		case "moon":
			actual.moon = p.Longitude
		case "mercury":
			actual.mercury = p.Longitude
		}
	}
	for _, h := range houses.Houses {
		switch h.Number {
		case 1:
			actual.cusp1 = h.CuspLongitude
		case 10:
			actual.cusp10 = h.CuspLongitude
		}
	}
	return actual, nil
}

// splitDatetime делит YYYY-MM-DDTHH:MM на дату и время кейса
func splitDatetime(s string) (string, string, error) {
	parts := strings.SplitN(s, "T", 2)
	if len(parts) != 2 || len(parts[0]) != 10 || len(parts[1]) < 5 {
		return "", "", fmt.Errorf("invalid case datetime %q, want YYYY-MM-DDTHH:MM", s)
	}
	return parts[0], parts[1][:5], nil
}

// circularDeltaDeg круговое расстояние между долготами в градусах
func circularDeltaDeg(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// FailedCaseIDs идентификаторы проваленных кейсов в устойчивом порядке
func FailedCaseIDs(report *domain.GoldenReport) []string {
	ids := make([]string, 0)
	for _, c := range report.Cases {
		if !c.Passed {
			ids = append(ids, c.CaseID)
		}
	}
	sort.Strings(ids)
	return ids
}
