package calendar

import (
	"errors"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/neontemple/temple-site/pkg/coterie"
)

const productID = "-//Neon Temple//temple-site//EN"

var ErrPrivateEvent = errors.New("members-only event cannot be exported")

// EventICS serializes a single public event as an iCalendar document.
func EventICS(e coterie.Event, siteURL string, stamp time.Time) (string, error) {
	if e.Private {
		return "", ErrPrivateEvent
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	event := cal.AddEvent(e.ID + "@neontemple")
	event.SetDtStampTime(stamp.UTC())
	event.SetStartAt(e.StartTime.UTC())
	event.SetSummary(e.Title)
	if e.Description != "" {
		event.SetDescription(e.Description)
	}
	if e.Location != "" {
		event.SetLocation(e.Location)
	}
	if siteURL != "" {
		event.SetURL(strings.TrimRight(siteURL, "/") + "/events/" + e.ID)
	}
	return cal.Serialize(), nil
}
