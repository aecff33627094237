package models

import (
	"fmt"
	"time"
)

const (
	EventDateLayout = "2006-01-02"
	EventTimeLayout = "15:04"
)

type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
	TicketLink  string `json:"ticketLink,omitempty"`
}

func (e Event) EntityID() string { return e.ID }

func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}

// StartsAt combines Date and Time in loc. Seconds in Time are accepted.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{EventTimeLayout, "15:04:05"} {
		t, err := time.ParseInLocation(EventDateLayout+"T"+layout, e.Date+"T"+e.Time, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid event start %q %q", e.Date, e.Time)
}
