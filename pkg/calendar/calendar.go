package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neontemple/temple-site/internal/utils"
	"github.com/neontemple/temple-site/pkg/coterie"
)

type View string

const (
	ViewGrid View = "grid"
	ViewList View = "list"
)

func (v View) Valid() bool {
	return v == ViewGrid || v == ViewList
}

const (
	DefaultLoadLimit   = 100
	SearchResultsLimit = 6
	LoadErrorMessage   = "Could not load events"
)

type EventFetcher interface {
	GetEvents(ctx context.Context, params coterie.ListParams) ([]coterie.Event, error)
}

// Day is one grid cell. Leading blank cells have Number 0 and a zero Date.
type Day struct {
	Number     int
	Date       utils.Date
	Events     []coterie.Event
	IsToday    bool
	IsSelected bool
}

func (d Day) Blank() bool {
	return d.Number == 0
}

// Calendar holds the view state of the events calendar: the displayed month,
// the loaded events, the search text and the selected day. Everything the page
// shows is derived from that state on each read.
//
// A Calendar is not safe for concurrent use; handlers build one per request.
type Calendar struct {
	clock utils.Clock
	loc   *time.Location
	limit int

	events  []coterie.Event
	loading bool
	errMsg  string

	cursor        Month
	selected      utils.Date
	search        string
	searchFocused bool
	view          View
}

// New starts on the current month with nothing selected. Wide displays get the
// grid, narrow ones the list.
func New(clock utils.Clock, loc *time.Location, wide bool) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	view := ViewList
	if wide {
		view = ViewGrid
	}
	return &Calendar{
		clock:   clock,
		loc:     loc,
		limit:   DefaultLoadLimit,
		loading: true,
		cursor:  MonthOf(utils.Today(clock, loc)),
		view:    view,
	}
}

// SetLimit changes how many events Load asks for. Non-positive values restore
// the default.
func (c *Calendar) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultLoadLimit
	}
	c.limit = limit
}

// Load replaces the event set with a fresh fetch. On failure the previous set
// is kept and Err reports LoadErrorMessage. Loading is cleared either way.
func (c *Calendar) Load(ctx context.Context, fetcher EventFetcher) error {
	c.loading = true
	c.errMsg = ""
	defer func() { c.loading = false }()

	events, err := fetcher.GetEvents(ctx, coterie.ListParams{Limit: c.limit})
	if err != nil {
		c.errMsg = LoadErrorMessage
		return fmt.Errorf("failed to load calendar events: %w", err)
	}
	c.events = append([]coterie.Event{}, events...)
	return nil
}

// SetEvents installs an already fetched event set.
func (c *Calendar) SetEvents(events []coterie.Event) {
	c.events = append([]coterie.Event{}, events...)
	c.errMsg = ""
	c.loading = false
}

func (c *Calendar) PrevMonth() {
	c.cursor = c.cursor.Add(-1)
	c.selected = utils.Date{}
}

func (c *Calendar) NextMonth() {
	c.cursor = c.cursor.Add(1)
	c.selected = utils.Date{}
}

// GoToToday shows the current month with today selected.
func (c *Calendar) GoToToday() {
	today := utils.Today(c.clock, c.loc)
	c.cursor = MonthOf(today)
	c.selected = today
}

// SelectDay selects a grid cell. Blank cells are ignored.
func (c *Calendar) SelectDay(day Day) {
	if day.Blank() || day.Date.IsZero() {
		return
	}
	c.selected = day.Date
}

// SelectDate selects a full date. The cursor is left alone, so a date outside
// the displayed month stays selected but highlights no cell.
func (c *Calendar) SelectDate(d utils.Date) {
	c.selected = d
}

func (c *Calendar) ClearSelection() {
	c.selected = utils.Date{}
}

// SetView switches display mode. The list has no day focus, so switching to it
// drops the selection.
func (c *Calendar) SetView(v View) {
	if !v.Valid() {
		return
	}
	c.view = v
	if v == ViewList {
		c.selected = utils.Date{}
	}
}

func (c *Calendar) SetSearch(search string) {
	c.search = search
}

func (c *Calendar) SetSearchFocused(focused bool) {
	c.searchFocused = focused
}

// GoToEvent moves to the event's month, selects its day and closes the search.
func (c *Calendar) GoToEvent(e coterie.Event) {
	d := c.dateOf(e)
	c.cursor = MonthOf(d)
	c.selected = d
	c.search = ""
	c.searchFocused = false
}

// GoToEventID is GoToEvent for an event in the loaded set. It reports whether
// the id was found.
func (c *Calendar) GoToEventID(id string) bool {
	for _, e := range c.events {
		if e.ID == id {
			c.GoToEvent(e)
			return true
		}
	}
	return false
}

// Days builds the month grid: FirstDayOfMonth blank cells, then one cell per
// day. Cells carry every loaded event regardless of the search text.
func (c *Calendar) Days() []Day {
	lead := c.FirstDayOfMonth()
	count := c.DaysInMonth()
	today := utils.Today(c.clock, c.loc)

	byDate := make(map[utils.Date][]coterie.Event)
	for _, e := range c.events {
		d := c.dateOf(e)
		if c.cursor.Contains(d) {
			byDate[d] = append(byDate[d], e)
		}
	}

	days := make([]Day, 0, lead+count)
	for i := 0; i < lead; i++ {
		days = append(days, Day{})
	}
	for n := 1; n <= count; n++ {
		date := utils.Date{Year: c.cursor.Year, Month: c.cursor.Month, Day: n}
		days = append(days, Day{
			Number:     n,
			Date:       date,
			Events:     byDate[date],
			IsToday:    date == today,
			IsSelected: !c.selected.IsZero() && date == c.selected,
		})
	}
	return days
}

func (c *Calendar) FirstDayOfMonth() int {
	return int(c.cursor.FirstWeekday())
}

func (c *Calendar) DaysInMonth() int {
	return c.cursor.Days()
}

func (c *Calendar) MonthLabel() string {
	return c.cursor.Label()
}

// FilteredEvents is the list view: events matching the search, soonest first.
func (c *Calendar) FilteredEvents() []coterie.Event {
	events := c.searchFiltered()
	sortByStart(events)
	return events
}

// SearchResults feeds the grid's search dropdown. It is empty in list mode and
// while the search text is blank.
func (c *Calendar) SearchResults() []coterie.Event {
	if c.view != ViewGrid || c.searchBlank() {
		return []coterie.Event{}
	}
	events := c.FilteredEvents()
	if len(events) > SearchResultsLimit {
		events = events[:SearchResultsLimit]
	}
	return events
}

func (c *Calendar) ShowSearchDropdown() bool {
	return c.view == ViewGrid && !c.searchBlank() && c.searchFocused && len(c.SearchResults()) > 0
}

// SelectedDateEvents lists the events on the selected day, ignoring the search.
func (c *Calendar) SelectedDateEvents() []coterie.Event {
	events := []coterie.Event{}
	if c.selected.IsZero() {
		return events
	}
	for _, e := range c.events {
		if c.dateOf(e) == c.selected {
			events = append(events, e)
		}
	}
	return events
}

func (c *Calendar) Events() []coterie.Event {
	return append([]coterie.Event{}, c.events...)
}

func (c *Calendar) Loading() bool {
	return c.loading
}

// Err returns the message shown in place of events after a failed load.
func (c *Calendar) Err() string {
	return c.errMsg
}

func (c *Calendar) Cursor() Month {
	return c.cursor
}

func (c *Calendar) Selected() (utils.Date, bool) {
	return c.selected, !c.selected.IsZero()
}

func (c *Calendar) Search() string {
	return c.search
}

func (c *Calendar) SearchFocused() bool {
	return c.searchFocused
}

func (c *Calendar) View() View {
	return c.view
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) Today() utils.Date {
	return utils.Today(c.clock, c.loc)
}

// Clone copies the view state. The event set is shared since it is only ever
// replaced, never modified in place.
func (c *Calendar) Clone() *Calendar {
	cp := *c
	return &cp
}

func (c *Calendar) dateOf(e coterie.Event) utils.Date {
	return utils.DateOf(e.StartTime, c.loc)
}

func (c *Calendar) searchBlank() bool {
	return strings.TrimSpace(c.search) == ""
}

func (c *Calendar) searchFiltered() []coterie.Event {
	if c.searchBlank() {
		return append([]coterie.Event{}, c.events...)
	}
	term := strings.ToLower(c.search)
	events := make([]coterie.Event, 0, len(c.events))
	for _, e := range c.events {
		if matches(e, term) {
			events = append(events, e)
		}
	}
	return events
}

func matches(e coterie.Event, term string) bool {
	for _, field := range []string{e.Title, e.Description, e.Location, e.EventType} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func sortByStart(events []coterie.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}
