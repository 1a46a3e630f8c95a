package swisseph

// Config конфигурация нативного движка эфемерид.
// EphePath обязателен: без файлов эфемерид нативная библиотека
// откатывается на встроенный moshier-режим с другой точностью.
type Config struct {
	EphePath        string `envconfig:"EPHE_PATH"`
	EpheVersion     string `envconfig:"EPHE_VERSION"`
	SiderealEnabled bool   `envconfig:"SIDEREAL_ENABLED" default:"false"`
}
