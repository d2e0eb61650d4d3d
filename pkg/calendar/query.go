package calendar

import (
	"fmt"
	"net/url"

	"github.com/neontemple/temple-site/internal/utils"
)

// The calendar page keeps its state in the query string so every link and
// form submission carries the full view state.
const (
	paramMonth  = "month"
	paramDay    = "day"
	paramSearch = "q"
	paramFocus  = "focus"
	paramView   = "view"
	paramGoTo   = "goto"
)

// Query encodes the view state. Loaded events and errors are not part of it.
func (c *Calendar) Query() url.Values {
	q := url.Values{}
	q.Set(paramMonth, c.cursor.String())
	q.Set(paramView, string(c.view))
	if !c.selected.IsZero() {
		q.Set(paramDay, c.selected.String())
	}
	if c.search != "" {
		q.Set(paramSearch, c.search)
	}
	if c.searchFocused {
		q.Set(paramFocus, "1")
	}
	return q
}

// Restore applies a query produced by Query. Missing parameters keep their
// current value; malformed ones are an error and leave the state untouched.
func (c *Calendar) Restore(q url.Values) error {
	next := *c

	if v := q.Get(paramView); v != "" {
		view := View(v)
		if !view.Valid() {
			return fmt.Errorf("invalid view %q", v)
		}
		next.view = view
	}
	if v := q.Get(paramMonth); v != "" {
		m, err := ParseMonth(v)
		if err != nil {
			return err
		}
		next.cursor = m
	}
	if v := q.Get(paramDay); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return err
		}
		next.selected = d
	}
	// List mode has no day focus.
	if next.view == ViewList {
		next.selected = utils.Date{}
	}
	next.search = q.Get(paramSearch)
	next.searchFocused = q.Get(paramFocus) == "1"

	*c = next
	return nil
}

// GoToParam returns the event id a search result link asked to jump to.
func GoToParam(q url.Values) string {
	return q.Get(paramGoTo)
}

func pageURL(base string, q url.Values) string {
	return base + "?" + q.Encode()
}
