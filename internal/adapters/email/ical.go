package email

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"compassevent/internal/domain"
)

// CalendarFilename is the attachment name used for event invites.
const CalendarFilename = "evento.ics"

// CalendarContentType is the MIME type of CalendarFilename.
const CalendarContentType = "text/calendar; charset=utf-8; method=REQUEST"

const eventDuration = 2 * time.Hour

type calendarBuilder struct {
	frontendURL string
	now         func() time.Time
}

// NewCalendarBuilder returns a CalendarBuilder whose invites link to <frontendURL>/events/<id>.
func NewCalendarBuilder(frontendURL string) domain.CalendarBuilder {
	return &calendarBuilder{frontendURL: strings.TrimRight(frontendURL, "/"), now: time.Now}
}

// Build renders a single VEVENT lasting two hours from the event date.
func (b *calendarBuilder) Build(event *domain.Event) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: event is required", domain.ErrInvalidInput)
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//compassevent//events//EN")

	ev := cal.AddEvent(event.ID)
	ev.SetDtStampTime(b.now().UTC())
	ev.SetStartAt(event.Date.UTC())
	ev.SetEndAt(event.Date.UTC().Add(eventDuration))
	ev.SetSummary(event.Name)
	if event.Description != "" {
		ev.SetDescription(event.Description)
	}
	if b.frontendURL != "" {
		ev.SetURL(b.frontendURL + "/events/" + event.ID)
	}
	return []byte(cal.Serialize()), nil
}
