package metrics

import "sync/atomic"

// Counters процессные счётчики сервиса. Инкременты атомарные,
// снапшот не согласован между счётчиками и этого достаточно.
type Counters struct {
	NatalComputed   atomic.Int64
	NatalFailed     atomic.Int64
	NatalCacheHits  atomic.Int64
	ChartsPersisted atomic.Int64
}

func New() *Counters {
	return &Counters{}
}

func (c *Counters) Snapshot() map[string]int64 {
	if c == nil {
		return map[string]int64{}
	}
	return map[string]int64{
		"natal_computed":   c.NatalComputed.Load(),
		"natal_failed":     c.NatalFailed.Load(),
		"natal_cache_hits": c.NatalCacheHits.Load(),
		"charts_persisted": c.ChartsPersisted.Load(),
	}
}
