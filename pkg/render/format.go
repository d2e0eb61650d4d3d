package render

import (
	"html/template"
	"strings"
	"time"
)

const (
	EventDescriptionLength    = 100
	AnnouncementContentLength = 120
	AnnouncementFullLength    = 250
	HeroPreviewLength         = 120
	TextBannerPreviewLength   = 80
	eventDateLayout           = "Mon, Jan 2, 3:04 PM"
	shortEventDateLayout      = "Mon, Jan 2"
	dateLayout                = "Jan 2, 2006"
	fullDateLayout            = "Monday, January 2, 2006"
	timeLayout                = "3:04 PM"
	monthLabelLayout          = "January 2006"
)

// Truncate cuts s to n characters and appends "...". Text that already fits is
// returned untouched.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}

func EscapeHTML(s string) string {
	return template.HTMLEscapeString(s)
}

func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func FormatEventDate(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(eventDateLayout)
}

// FormatShortEventDate is the calendar list form, without the time.
func FormatShortEventDate(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(shortEventDateLayout)
}

func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return in(t, loc).Format(dateLayout)
}

func FormatFullDate(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(fullDateLayout)
}

func FormatTime(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(timeLayout)
}

func MonthYear(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(monthLabelLayout)
}

type MonthGroup[T any] struct {
	Label string
	Items []T
}

// GroupByMonth buckets items under "January 2006" labels. Groups appear in the
// order their first item appears; items keep their relative order.
func GroupByMonth[T any](items []T, at func(T) time.Time, loc *time.Location) []MonthGroup[T] {
	var groups []MonthGroup[T]
	index := make(map[string]int)
	for _, item := range items {
		label := MonthYear(at(item), loc)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, MonthGroup[T]{Label: label})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t.Local()
	}
	return t.In(loc)
}
