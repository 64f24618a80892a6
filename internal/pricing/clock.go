package pricing

import "time"

// Clock abstracts "today" so date-dependent resolution is testable.
// It is injected into every component that defaults an as-of date;
// nothing in this package reads time.Now directly.
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewSystemClock returns a Clock backed by the wall clock, truncated to days.
func NewSystemClock() Clock { return systemClock{} }

// FixedClock always reports the same day. Test helper.
type FixedClock struct{ Day time.Time }

func (c FixedClock) Today() time.Time { return c.Day }
