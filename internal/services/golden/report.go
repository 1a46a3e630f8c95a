package golden

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

//go:embed dataset/*.json
var embeddedDatasets embed.FS

// embeddedDatasetPath датасет по умолчанию, вшитый в бинарь
const embeddedDatasetPath = "dataset/golden_dataset.json"

// LoadDefaultDataset возвращает вшитый датасет по умолчанию
func LoadDefaultDataset() (*domain.GoldenDataset, error) {
	raw, err := embeddedDatasets.ReadFile(embeddedDatasetPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded golden dataset: %w", err)
	}
	return ParseDataset(raw)
}

// MarshalReport сериализует отчёт в JSON с отступами
func MarshalReport(report *domain.GoldenReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// RenderMarkdown строит человекочитаемый отчёт: сводка, дрейф по
// метрикам и детализация проваленных кейсов.
func RenderMarkdown(report *domain.GoldenReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Golden validation report\n\n")
	fmt.Fprintf(&b, "Dataset: `%s`  \n", report.DatasetID)
	fmt.Fprintf(&b, "Generated at: %s\n\n", report.GeneratedAt)

	s := report.Summary
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Cases | Passed | Failed | Failed metrics | Max delta (deg) |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %.6f |\n\n",
		s.CasesCount, s.PassedCases, s.FailedCases, s.FailedMetrics, s.MaxDeltaDegrees)

	if len(s.DriftByMetric) > 0 {
		fmt.Fprintf(&b, "## Max drift by metric\n\n")
		fmt.Fprintf(&b, "| Metric | Max delta (deg) |\n|---|---|\n")
		metrics := make([]string, 0, len(s.DriftByMetric))
		for m := range s.DriftByMetric {
			metrics = append(metrics, m)
		}
		sort.Strings(metrics)
		for _, m := range metrics {
			fmt.Fprintf(&b, "| %s | %.6f |\n", m, s.DriftByMetric[m])
		}
		b.WriteString("\n")
	}

	failed := failedCases(report)
	if len(failed) == 0 {
		b.WriteString("All cases passed.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Failed cases\n\n")
	for _, c := range failed {
		fmt.Fprintf(&b, "### %s\n\n", c.CaseID)
		if c.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n\n", c.Error)
			continue
		}
		fmt.Fprintf(&b, "| Metric | Expected | Actual | Delta | Tolerance |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|\n")
		for _, m := range c.Metrics {
			if m.Passed {
				continue
			}
			fmt.Fprintf(&b, "| %s | %.7f | %.7f | %.7f | %.2f |\n",
				m.Metric, m.Expected, m.Actual, m.Delta, m.Tolerance)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func failedCases(report *domain.GoldenReport) []domain.GoldenCaseResult {
	out := make([]domain.GoldenCaseResult, 0)
	for _, c := range report.Cases {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}
