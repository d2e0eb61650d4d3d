package utils

import "time"

// Clock supplies the current instant. Calendar code asks it for "today" so
// tests can pin the date.
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

// Today returns the calendar date of clock.Now() in loc.
func Today(clock Clock, loc *time.Location) Date {
	return DateOf(clock.Now(), loc)
}
