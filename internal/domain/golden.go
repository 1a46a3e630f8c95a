package domain

// GoldenSettings фиксированные настройки движка для golden-кейса
type GoldenSettings struct {
	Engine      string `json:"engine"`
	Ephe        string `json:"ephe"`
	Frame       string `json:"frame"`
	Zodiac      string `json:"zodiac"`
	HouseSystem string `json:"house_system"`
}

// GoldenExpected замороженные ожидаемые долготы кейса
type GoldenExpected struct {
	Sun     float64 `json:"sun"`
	Moon    float64 `json:"moon"`
	Mercury float64 `json:"mercury"`
	Asc     float64 `json:"asc"`
	MC      float64 `json:"mc"`
	Cusp1   float64 `json:"cusp_1"`
	Cusp10  float64 `json:"cusp_10"`
}

// GoldenPlace разрешённое место кейса
type GoldenPlace struct {
	Name     string  `json:"name"`
	Timezone string  `json:"timezone"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// GoldenCase один кейс golden-датасета
type GoldenCase struct {
	CaseID        string         `json:"case_id"`
	Datetime      string         `json:"datetime"` // YYYY-MM-DDTHH:MM локального времени
	PlaceResolved GoldenPlace    `json:"place_resolved"`
	Settings      GoldenSettings `json:"settings"`
	Expected      GoldenExpected `json:"expected"`
}

// GoldenTolerances допуски датасета в градусах
type GoldenTolerances struct {
	PlanetsDeg float64 `json:"planets_deg"`
	AnglesDeg  float64 `json:"angles_deg"`
}

// GoldenDataset замороженный датасет валидации
type GoldenDataset struct {
	DatasetID  string           `json:"dataset_id"`
	Tolerances GoldenTolerances `json:"tolerances"`
	Cases      []GoldenCase     `json:"cases"`
}

// GoldenMetricResult дельта одной метрики кейса
type GoldenMetricResult struct {
	Metric    string  `json:"metric"`
	Expected  float64 `json:"expected"`
	Actual    float64 `json:"actual"`
	Delta     float64 `json:"delta"` // круговое расстояние
	Tolerance float64 `json:"tolerance"`
	Passed    bool    `json:"passed"`
}

// GoldenCaseResult итог одного кейса
type GoldenCaseResult struct {
	CaseID  string               `json:"case_id"`
	Passed  bool                 `json:"passed"`
	Metrics []GoldenMetricResult `json:"metrics"`
	Error   string               `json:"error,omitempty"`
}

// GoldenSummary сводка отчёта
type GoldenSummary struct {
	CasesCount      int                `json:"cases_count"`
	PassedCases     int                `json:"passed_cases"`
	FailedCases     int                `json:"failed_cases"`
	FailedMetrics   int                `json:"failed_metrics"`
	MaxDeltaDegrees float64            `json:"max_delta_degrees"`
	DriftByMetric   map[string]float64 `json:"drift_by_metric"` // максимум дельты по каждой метрике
}

// GoldenReport итоговый отчёт валидатора
type GoldenReport struct {
	DatasetID   string             `json:"dataset_id"`
	GeneratedAt string             `json:"generated_at"` // ISO-8601 UTC
	Summary     GoldenSummary      `json:"summary"`
	Cases       []GoldenCaseResult `json:"cases"`
}
