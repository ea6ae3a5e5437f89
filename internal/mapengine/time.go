package mapengine

import "time"

// TimeExtent is a closed time range.
type TimeExtent struct {
	Start time.Time
	End   time.Time
}

// ExpandTo widens the extent outwards to whole multiples of unit: Start is
// truncated and End is rounded up. A non-positive unit returns e unchanged.
func (e TimeExtent) ExpandTo(unit time.Duration) TimeExtent {
	if unit <= 0 {
		return e
	}
	start := e.Start.Truncate(unit)
	end := e.End.Truncate(unit)
	if end.Before(e.End) {
		end = end.Add(unit)
	}
	return TimeExtent{Start: start, End: end}
}

// IsZero reports whether neither bound is set.
func (e TimeExtent) IsZero() bool {
	return e.Start.IsZero() && e.End.IsZero()
}

// TimeInfo is a layer's temporal metadata.
type TimeInfo struct {
	FullTimeExtent TimeExtent
	Interval       time.Duration
}
