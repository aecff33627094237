package countdown

import (
	"fmt"
	"time"

	"github.com/pershin-daniil/bsa-site/pkg/models"
)

const (
	Ended       = "Event has ended"
	Calculating = "Calculating..."
)

const (
	msSecond = int64(1000)
	msMinute = 60 * msSecond
	msHour   = 60 * msMinute
	msDay    = 24 * msHour
)

// Format renders the time left until start as "Nd Nh Nm Ns".
func Format(start, now time.Time) string {
	diff := start.Sub(now).Milliseconds()
	if diff <= 0 {
		return Ended
	}
	days := diff / msDay
	hours := diff % msDay / msHour
	minutes := diff % msHour / msMinute
	seconds := diff % msMinute / msSecond
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// Board maps every event id to its countdown at now. Events with an
// unparsable start keep the placeholder text.
func Board(events []models.Event, now time.Time, loc *time.Location) map[string]string {
	board := make(map[string]string, len(events))
	for _, event := range events {
		start, err := event.StartsAt(loc)
		if err != nil {
			board[event.ID] = Calculating
			continue
		}
		board[event.ID] = Format(start, now)
	}
	return board
}
