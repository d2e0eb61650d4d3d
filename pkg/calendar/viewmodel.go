package calendar

import (
	"net/url"
	"time"

	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/neontemple/temple-site/pkg/render"
)

const (
	pagePath     = "/calendar"
	privateTitle = "Members Only Event"
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type EventView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	EventType   string    `json:"eventType,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Private     bool      `json:"private,omitempty"`
	StartTime   time.Time `json:"startTime"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	GoToURL     string    `json:"goToUrl"`
	DetailURL   string    `json:"detailUrl"`
	ICSURL      string    `json:"icsUrl,omitempty"`
}

type DayView struct {
	Number     int         `json:"number,omitempty"`
	Date       string      `json:"date,omitempty"`
	Blank      bool        `json:"blank"`
	IsToday    bool        `json:"isToday"`
	IsSelected bool        `json:"isSelected"`
	Events     []EventView `json:"events"`
	URL        string      `json:"url,omitempty"`
}

type Links struct {
	Prev           string `json:"prev"`
	Next           string `json:"next"`
	Today          string `json:"today"`
	ClearSelection string `json:"clearSelection"`
	Grid           string `json:"grid"`
	List           string `json:"list"`
	Self           string `json:"self"`
}

// ViewModel is everything the calendar page shows, derived from a Calendar.
type ViewModel struct {
	Month              string                         `json:"month"`
	MonthLabel         string                         `json:"monthLabel"`
	View               View                           `json:"view"`
	Loading            bool                           `json:"loading"`
	Error              string                         `json:"error,omitempty"`
	Search             string                         `json:"search"`
	SearchFocused      bool                           `json:"searchFocused"`
	Weekdays           []string                       `json:"weekdays"`
	FirstDayOfMonth    int                            `json:"firstDayOfMonth"`
	DaysInMonth        int                            `json:"daysInMonth"`
	Days               []DayView                      `json:"days"`
	Events             []EventView                    `json:"events"`
	Groups             []render.MonthGroup[EventView] `json:"-"`
	SearchResults      []EventView                    `json:"searchResults"`
	ShowSearchDropdown bool                           `json:"showSearchDropdown"`
	Selected           string                         `json:"selected,omitempty"`
	SelectedLabel      string                         `json:"selectedLabel,omitempty"`
	SelectedEvents     []EventView                    `json:"selectedEvents"`
	Links              Links                          `json:"links"`
}

// BuildViewModel derives the page view of c. It does not modify c.
func BuildViewModel(c *Calendar, imageURL func(string) string) ViewModel {
	if imageURL == nil {
		imageURL = func(path string) string { return path }
	}
	b := viewBuilder{cal: c, imageURL: imageURL}

	vm := ViewModel{
		Month:              c.cursor.String(),
		MonthLabel:         c.MonthLabel(),
		View:               c.view,
		Loading:            c.loading,
		Error:              c.errMsg,
		Search:             c.search,
		SearchFocused:      c.searchFocused,
		Weekdays:           weekdays,
		FirstDayOfMonth:    c.FirstDayOfMonth(),
		DaysInMonth:        c.DaysInMonth(),
		Events:             b.events(c.FilteredEvents()),
		SearchResults:      b.events(c.SearchResults()),
		ShowSearchDropdown: c.ShowSearchDropdown(),
		SelectedEvents:     b.events(c.SelectedDateEvents()),
		Links:              b.links(),
	}
	vm.Groups = render.GroupByMonth(vm.Events, func(e EventView) time.Time { return e.StartTime }, c.loc)

	for _, day := range c.Days() {
		vm.Days = append(vm.Days, b.day(day))
	}
	if selected, ok := c.Selected(); ok {
		vm.Selected = selected.String()
		vm.SelectedLabel = render.FormatFullDate(selected.Time(c.loc), c.loc)
	}
	return vm
}

type viewBuilder struct {
	cal      *Calendar
	imageURL func(string) string
}

func (b viewBuilder) url(action func(c *Calendar)) string {
	next := b.cal.Clone()
	action(next)
	return pageURL(pagePath, next.Query())
}

func (b viewBuilder) links() Links {
	return Links{
		Prev:           b.url(func(c *Calendar) { c.PrevMonth() }),
		Next:           b.url(func(c *Calendar) { c.NextMonth() }),
		Today:          b.url(func(c *Calendar) { c.GoToToday() }),
		ClearSelection: b.url(func(c *Calendar) { c.ClearSelection() }),
		Grid:           b.url(func(c *Calendar) { c.SetView(ViewGrid) }),
		List:           b.url(func(c *Calendar) { c.SetView(ViewList) }),
		Self:           b.url(func(c *Calendar) {}),
	}
}

func (b viewBuilder) day(d Day) DayView {
	if d.Blank() {
		return DayView{Blank: true, Events: []EventView{}}
	}
	return DayView{
		Number:     d.Number,
		Date:       d.Date.String(),
		IsToday:    d.IsToday,
		IsSelected: d.IsSelected,
		Events:     b.events(d.Events),
		URL:        b.url(func(c *Calendar) { c.SelectDay(d) }),
	}
}

func (b viewBuilder) events(events []coterie.Event) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, b.event(e))
	}
	return views
}

func (b viewBuilder) event(e coterie.Event) EventView {
	loc := b.cal.loc
	v := EventView{
		ID:        e.ID,
		Private:   e.Private,
		StartTime: e.StartTime,
		Date:      render.FormatShortEventDate(e.StartTime, loc),
		Time:      render.FormatTime(e.StartTime, loc),
		DetailURL: "/events/" + url.PathEscape(e.ID),
	}
	goTo := b.cal.Clone()
	goTo.GoToEvent(e)
	q := goTo.Query()
	q.Set(paramGoTo, e.ID)
	v.GoToURL = pageURL(pagePath, q)

	if e.Private {
		v.Title = privateTitle
		return v
	}
	v.Title = e.Title
	v.Description = e.Description
	v.Location = e.Location
	v.EventType = e.EventType
	if e.ImageURL != "" {
		v.ImageURL = b.imageURL(e.ImageURL)
	}
	v.ICSURL = "/events/" + url.PathEscape(e.ID) + ".ics"
	return v
}
