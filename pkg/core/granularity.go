package core

import (
	"fmt"
	"strings"
)

// TimeGranularity is the bucket precision a time dimension can be rolled up to.
// The zero value means no granularity was requested.
type TimeGranularity string

// Supported granularities, finest first.
const (
	GranularitySecond  TimeGranularity = "second"
	GranularityMinute  TimeGranularity = "minute"
	GranularityHour    TimeGranularity = "hour"
	GranularityDay     TimeGranularity = "day"
	GranularityWeek    TimeGranularity = "week"
	GranularityMonth   TimeGranularity = "month"
	GranularityQuarter TimeGranularity = "quarter"
	GranularityYear    TimeGranularity = "year"
)

// granularityRank orders granularities from finest (lowest) to coarsest.
var granularityRank = map[TimeGranularity]int{
	GranularitySecond:  1,
	GranularityMinute:  2,
	GranularityHour:    3,
	GranularityDay:     4,
	GranularityWeek:    5,
	GranularityMonth:   6,
	GranularityQuarter: 7,
	GranularityYear:    8,
}

// Granularities returns all supported granularities, finest first.
func Granularities() []TimeGranularity {
	return []TimeGranularity{
		GranularitySecond,
		GranularityMinute,
		GranularityHour,
		GranularityDay,
		GranularityWeek,
		GranularityMonth,
		GranularityQuarter,
		GranularityYear,
	}
}

// ParseTimeGranularity converts a string to a TimeGranularity (case-insensitive).
// Returns false if the string does not name a supported granularity.
func ParseTimeGranularity(s string) (TimeGranularity, bool) {
	g := TimeGranularity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := granularityRank[g]; !ok {
		return "", false
	}
	return g, true
}

// String returns the granularity name.
func (g TimeGranularity) String() string {
	return string(g)
}

// IsZero reports whether no granularity is set.
func (g TimeGranularity) IsZero() bool {
	return g == ""
}

// IsValid reports whether g names a supported granularity.
func (g TimeGranularity) IsValid() bool {
	_, ok := granularityRank[g]
	return ok
}

// IsFinerThan reports whether g is a strictly finer precision than other.
// Unknown or empty granularities are never finer than anything.
func (g TimeGranularity) IsFinerThan(other TimeGranularity) bool {
	a, okA := granularityRank[g]
	b, okB := granularityRank[other]
	if !okA || !okB {
		return false
	}
	return a < b
}

// Coarsest returns the coarsest of the given granularities, ignoring empty
// or unknown values. Returns the zero value if none are valid.
func Coarsest(grans ...TimeGranularity) TimeGranularity {
	var result TimeGranularity
	for _, g := range grans {
		if !g.IsValid() {
			continue
		}
		if result.IsZero() || result.IsFinerThan(g) {
			result = g
		}
	}
	return result
}

// UnmarshalText implements encoding.TextUnmarshaler so model files and
// configuration can carry granularity names.
func (g *TimeGranularity) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*g = ""
		return nil
	}
	parsed, ok := ParseTimeGranularity(string(text))
	if !ok {
		return fmt.Errorf("unknown time granularity %q", string(text))
	}
	*g = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (g TimeGranularity) MarshalText() ([]byte, error) {
	return []byte(g), nil
}
