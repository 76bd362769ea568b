package utils

import "time"

// DateLayout is the ISO calendar-date layout used for reservation date keys.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// DateKey formats t as a YYYY-MM-DD key using its wall-clock date in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}

// Today returns the clock's current local date key.
func Today(c Clock, loc *time.Location) string {
	return DateKey(c.Now(), loc)
}
