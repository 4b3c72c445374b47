package cache

// Default latencies, in nanoseconds.
const (
	DefaultHitLatencyNs  = 1.0
	DefaultMissLatencyNs = 100.0
)

// Stats holds the running counters of a cache. TotalAccesses always equals
// Hits + Misses.
type Stats struct {
	TotalAccesses uint64 `json:"total_accesses"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
}

// Metrics are the performance figures derived from Stats and the two
// latencies of the cache.
type Metrics struct {
	HitRate           float64 `json:"hit_rate"`
	MissRate          float64 `json:"miss_rate"`
	AvgAccessTimeNs   float64 `json:"avg_access_time_ns"`
	TotalAccessTimeNs float64 `json:"total_access_time_ns"`
}

// ComputeMetrics derives Metrics from a Stats snapshot. The divisor is never
// smaller than 1, so an unused cache reports 0% rather than NaN.
func ComputeMetrics(s Stats, hitLatencyNs, missLatencyNs float64) Metrics {
	divisor := float64(max(s.TotalAccesses, 1))
	hits := float64(s.Hits)
	misses := float64(s.Misses)
	total := hits*hitLatencyNs + misses*missLatencyNs

	return Metrics{
		HitRate:           hits / divisor * 100,
		MissRate:          misses / divisor * 100,
		AvgAccessTimeNs:   total / divisor,
		TotalAccessTimeNs: total,
	}
}
