package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neontemple/temple-site/internal/utils"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func setupCalendar(t *testing.T, events ...coterie.Event) (*Calendar, *coterie.ClientStub) {
	clock := &utils.MockClock{FixedNow: testNow}
	cal := New(clock, time.UTC, true)
	client := coterie.NewClientStub()
	client.SetEvents(events)
	require.NoError(t, cal.Load(context.Background(), client))
	return cal, client
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func titles(events []coterie.Event) []string {
	result := make([]string, 0, len(events))
	for _, e := range events {
		result = append(result, e.Title)
	}
	return result
}

func TestNew(t *testing.T) {
	clock := &utils.MockClock{FixedNow: testNow}

	t.Run("should start on current month in grid for wide displays", func(t *testing.T) {
		cal := New(clock, time.UTC, true)

		assert.Equal(t, Month{2024, time.March}, cal.Cursor())
		assert.Equal(t, ViewGrid, cal.View())
		assert.True(t, cal.Loading())
		assert.Empty(t, cal.Search())
		assert.False(t, cal.SearchFocused())
		_, selected := cal.Selected()
		assert.False(t, selected)
	})

	t.Run("should start in list for narrow displays", func(t *testing.T) {
		cal := New(clock, time.UTC, false)

		assert.Equal(t, ViewList, cal.View())
	})
}

func TestCalendar_Load(t *testing.T) {
	t.Run("should replace events and clear loading", func(t *testing.T) {
		cal, client := setupCalendar(t, coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 3, 5, 20)})

		assert.False(t, cal.Loading())
		assert.Empty(t, cal.Err())
		assert.Len(t, cal.Events(), 1)
		assert.Equal(t, 1, client.GetEventsCalls())
	})

	t.Run("should request the configured limit", func(t *testing.T) {
		events := make([]coterie.Event, 0, 150)
		for i := 0; i < 150; i++ {
			events = append(events, coterie.Event{ID: fmt.Sprint(i), StartTime: at(2024, 3, 1, 0)})
		}
		cal, _ := setupCalendar(t, events...)

		assert.Len(t, cal.Events(), DefaultLoadLimit)
	})

	t.Run("should report failure, keep events and clear loading", func(t *testing.T) {
		cal, client := setupCalendar(t, coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 3, 5, 20)})
		client.SetGetEventsError(errors.New("boom"))

		err := cal.Load(context.Background(), client)

		assert.Error(t, err)
		assert.False(t, cal.Loading())
		assert.Equal(t, LoadErrorMessage, cal.Err())
		assert.Len(t, cal.Events(), 1)
	})

	t.Run("should leave events empty when first load fails", func(t *testing.T) {
		cal := New(&utils.MockClock{FixedNow: testNow}, time.UTC, true)
		client := coterie.NewClientStub()
		client.SetGetEventsError(errors.New("boom"))

		err := cal.Load(context.Background(), client)

		assert.Error(t, err)
		assert.Empty(t, cal.Events())
		assert.Equal(t, LoadErrorMessage, cal.Err())
		assert.False(t, cal.Loading())
	})

	t.Run("should clear the error on a later successful load", func(t *testing.T) {
		cal, client := setupCalendar(t)
		client.SetGetEventsError(errors.New("boom"))
		_ = cal.Load(context.Background(), client)
		client.SetGetEventsError(nil)

		require.NoError(t, cal.Load(context.Background(), client))

		assert.Empty(t, cal.Err())
	})
}

func TestCalendar_GridCoversMonth(t *testing.T) {
	cal, _ := setupCalendar(t)

	for i := 0; i < 36; i++ {
		cal.NextMonth()
		t.Run(cal.Cursor().String(), func(t *testing.T) {
			days := cal.Days()

			require.Len(t, days, cal.FirstDayOfMonth()+cal.DaysInMonth())
			for j := 0; j < cal.FirstDayOfMonth(); j++ {
				assert.True(t, days[j].Blank())
				assert.True(t, days[j].Date.IsZero())
			}
			for j, day := range days[cal.FirstDayOfMonth():] {
				assert.Equal(t, j+1, day.Number)
				assert.Equal(t, cal.Cursor().Year, day.Date.Year)
				assert.Equal(t, cal.Cursor().Month, day.Date.Month)
			}
		})
	}
}

func TestCalendar_MonthNavigation(t *testing.T) {
	t.Run("should go from January back to December of previous year", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		require.NoError(t, cal.Restore(map[string][]string{"month": {"2024-01"}}))

		cal.PrevMonth()

		assert.Equal(t, Month{2023, time.December}, cal.Cursor())
		assert.Equal(t, "December 2023", cal.MonthLabel())
	})

	t.Run("should go from December forward to January of next year", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		require.NoError(t, cal.Restore(map[string][]string{"month": {"2023-12"}}))

		cal.NextMonth()

		assert.Equal(t, Month{2024, time.January}, cal.Cursor())
	})

	t.Run("should clear selection", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		cal.SelectDate(utils.Date{Year: 2024, Month: time.March, Day: 5})

		cal.NextMonth()
		_, selected := cal.Selected()
		assert.False(t, selected)

		cal.SelectDate(utils.Date{Year: 2024, Month: time.April, Day: 5})
		cal.PrevMonth()
		_, selected = cal.Selected()
		assert.False(t, selected)
	})
}

func TestCalendar_DaysBucketEventsByCalendarDay(t *testing.T) {
	t.Run("should place event only on its day", func(t *testing.T) {
		cal, _ := setupCalendar(t,
			coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 3, 5, 20)},
			coterie.Event{ID: "2", Title: "Late", StartTime: time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)},
			coterie.Event{ID: "3", Title: "April", StartTime: at(2024, 4, 5, 20)},
		)

		for _, day := range cal.Days() {
			if day.Number == 5 {
				assert.Equal(t, []string{"Gala", "Late"}, titles(day.Events))
			} else {
				assert.Empty(t, day.Events, "day %d", day.Number)
			}
		}
	})

	t.Run("should use the display time zone for the calendar day", func(t *testing.T) {
		newYork, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		cal := New(&utils.MockClock{FixedNow: testNow}, newYork, true)
		cal.SetEvents([]coterie.Event{{ID: "1", Title: "Evening", StartTime: at(2024, 3, 6, 2)}})

		for _, day := range cal.Days() {
			if day.Number == 5 {
				assert.Len(t, day.Events, 1)
			} else {
				assert.Empty(t, day.Events)
			}
		}
	})

	t.Run("should mark today and selection", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		cal.SelectDate(utils.Date{Year: 2024, Month: time.March, Day: 12})

		for _, day := range cal.Days() {
			assert.Equal(t, day.Number == 10, day.IsToday, "day %d", day.Number)
			assert.Equal(t, day.Number == 12, day.IsSelected, "day %d", day.Number)
		}
	})

	t.Run("should not mark selection from another month", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		cal.SelectDate(utils.Date{Year: 2024, Month: time.April, Day: 12})

		for _, day := range cal.Days() {
			assert.False(t, day.IsSelected)
		}
	})
}

func TestCalendar_GridIgnoresSearch(t *testing.T) {
	cal, _ := setupCalendar(t,
		coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 3, 5, 20)},
		coterie.Event{ID: "2", Title: "Social", StartTime: at(2024, 3, 1, 18)},
	)
	cal.SetSearch("gala")

	count := 0
	for _, day := range cal.Days() {
		count += len(day.Events)
	}

	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"Gala"}, titles(cal.FilteredEvents()))
}

func TestCalendar_FilteredEvents(t *testing.T) {
	events := []coterie.Event{
		{ID: "1", Title: "Spring Gala", StartTime: at(2024, 3, 5, 20)},
		{ID: "2", Title: "Board meeting", Description: "Quarterly GALA planning", StartTime: at(2024, 3, 2, 18)},
		{ID: "3", Title: "Picnic", Location: "Gala Park", StartTime: at(2024, 3, 9, 12)},
		{ID: "4", Title: "Mixer", EventType: "gala", StartTime: at(2024, 3, 1, 19)},
		{ID: "5", Title: "Workshop", StartTime: at(2024, 3, 3, 10)},
		{ID: "6", Title: "Members only", Private: true, StartTime: at(2024, 3, 4, 10)},
	}

	tests := []struct {
		name     string
		search   string
		expected []string
	}{
		{name: "empty search returns everything sorted", search: "", expected: []string{"Mixer", "Board meeting", "Workshop", "Members only", "Spring Gala", "Picnic"}},
		{name: "whitespace search returns everything", search: "   ", expected: []string{"Mixer", "Board meeting", "Workshop", "Members only", "Spring Gala", "Picnic"}},
		{name: "matches any field case-insensitively", search: "GaLa", expected: []string{"Mixer", "Board meeting", "Spring Gala", "Picnic"}},
		{name: "matches title only", search: "work", expected: []string{"Workshop"}},
		{name: "no match", search: "zzz", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, _ := setupCalendar(t, events...)
			cal.SetSearch(tt.search)

			assert.Equal(t, tt.expected, titles(cal.FilteredEvents()))
		})
	}
}

func TestCalendar_FilteredEventsSortedForAnyOrder(t *testing.T) {
	base := []coterie.Event{
		{ID: "a", Title: "A", StartTime: at(2024, 3, 5, 20)},
		{ID: "b", Title: "B", StartTime: at(2024, 3, 1, 18)},
		{ID: "c", Title: "C", StartTime: at(2024, 3, 5, 20)},
		{ID: "d", Title: "D", StartTime: at(2024, 2, 28, 9)},
	}
	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}

	for _, order := range orders {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			events := make([]coterie.Event, 0, len(order))
			for _, i := range order {
				events = append(events, base[i])
			}
			cal, _ := setupCalendar(t, events...)

			sorted := cal.FilteredEvents()

			require.Len(t, sorted, 4)
			for i := 1; i < len(sorted); i++ {
				assert.False(t, sorted[i].StartTime.Before(sorted[i-1].StartTime))
			}
			assert.Equal(t, "D", sorted[0].Title)
			assert.Equal(t, "B", sorted[1].Title)
		})
	}
}

func TestCalendar_ListExample(t *testing.T) {
	cal, _ := setupCalendar(t,
		coterie.Event{ID: "1", Title: "Gala", StartTime: time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)},
		coterie.Event{ID: "2", Title: "Social", StartTime: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)},
	)

	cal.SetView(ViewList)

	assert.Equal(t, []string{"Social", "Gala"}, titles(cal.FilteredEvents()))
}

func TestCalendar_SearchResults(t *testing.T) {
	events := make([]coterie.Event, 0, 10)
	for i := 10; i > 0; i-- {
		events = append(events, coterie.Event{ID: fmt.Sprint(i), Title: fmt.Sprintf("Meetup %d", i), StartTime: at(2024, 3, i, 18)})
	}

	t.Run("should cap at six soonest results", func(t *testing.T) {
		cal, _ := setupCalendar(t, events...)
		cal.SetSearch("meetup")
		cal.SetSearchFocused(true)

		results := cal.SearchResults()

		require.Len(t, results, SearchResultsLimit)
		assert.Equal(t, "Meetup 1", results[0].Title)
		assert.Equal(t, "Meetup 6", results[5].Title)
		assert.True(t, cal.ShowSearchDropdown())
	})

	t.Run("should hide dropdown when unfocused", func(t *testing.T) {
		cal, _ := setupCalendar(t, events...)
		cal.SetSearch("meetup")

		assert.Len(t, cal.SearchResults(), SearchResultsLimit)
		assert.False(t, cal.ShowSearchDropdown())
	})

	t.Run("should be empty for blank search", func(t *testing.T) {
		cal, _ := setupCalendar(t, events...)
		cal.SetSearch("  ")
		cal.SetSearchFocused(true)

		assert.Empty(t, cal.SearchResults())
		assert.False(t, cal.ShowSearchDropdown())
	})

	t.Run("should be empty in list mode", func(t *testing.T) {
		cal, _ := setupCalendar(t, events...)
		cal.SetView(ViewList)
		cal.SetSearch("meetup")
		cal.SetSearchFocused(true)

		assert.Empty(t, cal.SearchResults())
		assert.False(t, cal.ShowSearchDropdown())
		assert.Len(t, cal.FilteredEvents(), 10)
	})

	t.Run("should hide dropdown without results", func(t *testing.T) {
		cal, _ := setupCalendar(t, events...)
		cal.SetSearch("nothing")
		cal.SetSearchFocused(true)

		assert.False(t, cal.ShowSearchDropdown())
	})
}

func TestCalendar_Selection(t *testing.T) {
	t.Run("should select a real day and keep search", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		cal.SetSearch("gala")
		cal.SetSearchFocused(true)
		day := cal.Days()[cal.FirstDayOfMonth()+4]

		cal.SelectDay(day)

		selected, ok := cal.Selected()
		require.True(t, ok)
		assert.Equal(t, utils.Date{Year: 2024, Month: time.March, Day: 5}, selected)
		assert.Equal(t, "gala", cal.Search())
		assert.True(t, cal.SearchFocused())
	})

	t.Run("should ignore blank cells", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		require.Greater(t, cal.FirstDayOfMonth(), 0)

		cal.SelectDay(cal.Days()[0])

		_, ok := cal.Selected()
		assert.False(t, ok)
	})

	t.Run("should clear", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		cal.SelectDate(utils.Date{Year: 2024, Month: time.March, Day: 5})

		cal.ClearSelection()

		_, ok := cal.Selected()
		assert.False(t, ok)
	})

	t.Run("should drop selection when switching to list", func(t *testing.T) {
		cal, _ := setupCalendar(t)
		cal.SelectDate(utils.Date{Year: 2024, Month: time.March, Day: 5})

		cal.SetView(ViewGrid)
		_, ok := cal.Selected()
		assert.True(t, ok)

		cal.SetView(ViewList)
		_, ok = cal.Selected()
		assert.False(t, ok)
	})

	t.Run("should list selected day events ignoring search", func(t *testing.T) {
		cal, _ := setupCalendar(t,
			coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 3, 5, 20)},
			coterie.Event{ID: "2", Title: "Social", StartTime: at(2024, 3, 5, 10)},
			coterie.Event{ID: "3", Title: "Other", StartTime: at(2024, 3, 6, 10)},
		)
		cal.SetSearch("gala")
		cal.SelectDate(utils.Date{Year: 2024, Month: time.March, Day: 5})

		assert.Equal(t, []string{"Gala", "Social"}, titles(cal.SelectedDateEvents()))
	})

	t.Run("should list nothing without selection", func(t *testing.T) {
		cal, _ := setupCalendar(t, coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 3, 5, 20)})

		assert.Empty(t, cal.SelectedDateEvents())
	})
}

func TestCalendar_GoToEvent(t *testing.T) {
	gala := coterie.Event{ID: "1", Title: "Gala", StartTime: at(2025, 1, 17, 20)}
	cal, _ := setupCalendar(t, gala)
	cal.SetSearch("gala")
	cal.SetSearchFocused(true)

	cal.GoToEvent(gala)

	assert.Equal(t, Month{2025, time.January}, cal.Cursor())
	selected, ok := cal.Selected()
	require.True(t, ok)
	assert.Equal(t, utils.Date{Year: 2025, Month: time.January, Day: 17}, selected)
	assert.Empty(t, cal.Search())
	assert.False(t, cal.SearchFocused())
}

func TestCalendar_GoToEventID(t *testing.T) {
	cal, _ := setupCalendar(t, coterie.Event{ID: "1", Title: "Gala", StartTime: at(2024, 5, 2, 20)})

	assert.True(t, cal.GoToEventID("1"))
	assert.Equal(t, Month{2024, time.May}, cal.Cursor())
	assert.False(t, cal.GoToEventID("missing"))
}

func TestCalendar_GoToToday(t *testing.T) {
	cal, _ := setupCalendar(t)
	cal.NextMonth()
	cal.NextMonth()

	cal.GoToToday()

	assert.Equal(t, Month{2024, time.March}, cal.Cursor())
	selected, ok := cal.Selected()
	require.True(t, ok)
	assert.Equal(t, utils.Date{Year: 2024, Month: time.March, Day: 10}, selected)
}
