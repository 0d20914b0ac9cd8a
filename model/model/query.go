package model

import "time"

// MetricsFilter narrows unified metric reads. Zero-valued times leave
// that side of the range open; both endpoints are inclusive.
type MetricsFilter struct {
	StartDate    time.Time
	EndDate      time.Time
	SourceSystem string
	Rollup       bool
}

// MatchesSource reports whether the filter admits the given platform
// label. An empty filter admits everything.
func (f *MetricsFilter) MatchesSource(platform string) bool {
	if f.SourceSystem == "" {
		return true
	}
	canonical, ok := CanonicalSourceSystem(f.SourceSystem)
	if !ok {
		return false
	}
	return canonical == platform
}

// DateBounds renders the filter endpoints as inclusive ISO date
// strings for the fact table queries; empty strings mean unbounded.
func (f *MetricsFilter) DateBounds() (string, string) {
	start, end := "", ""
	if !f.StartDate.IsZero() {
		start = f.StartDate.Format("2006-01-02")
	}
	if !f.EndDate.IsZero() {
		end = f.EndDate.Format("2006-01-02")
	}
	return start, end
}
