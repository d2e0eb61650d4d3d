package calendar

import (
	"fmt"
	"time"

	"github.com/neontemple/temple-site/internal/utils"
)

const monthLayout = "2006-01"

// Month is the calendar cursor: a year and month with no day attached.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d utils.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth parses the YYYY-MM form produced by Month.String.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Add shifts the month by n, rolling over year boundaries in both directions.
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) First() utils.Date {
	return utils.Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday is the weekday of day 1, Sunday being 0.
func (m Month) FirstWeekday() time.Weekday {
	return m.First().Weekday()
}

func (m Month) Contains(d utils.Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// Label renders the month the way the calendar header shows it, e.g. "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
