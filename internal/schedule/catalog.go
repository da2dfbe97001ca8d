// Package schedule holds the fixed time-slot catalog and the rescheduling
// protocol built on it. Everything here is pure transformation; the network
// side lives in the portal package.
package schedule

import (
	"fmt"
	"time"
)

// TimeSlotOption is one of the six fixed two-hour teaching windows offered
// every day. Start and End are HH:MM strings.
type TimeSlotOption struct {
	Label string
	Start string
	End   string
}

// Slots is the process-wide slot catalog. Indexes into this slice are what
// the reschedule form submits.
var Slots = []TimeSlotOption{
	{Label: "Ca 1 (07:00 - 09:00)", Start: "07:00", End: "09:00"},
	{Label: "Ca 2 (09:00 - 11:00)", Start: "09:00", End: "11:00"},
	{Label: "Ca 3 (13:00 - 15:00)", Start: "13:00", End: "15:00"},
	{Label: "Ca 4 (15:00 - 17:00)", Start: "15:00", End: "17:00"},
	{Label: "Ca 5 (17:00 - 19:00)", Start: "17:00", End: "19:00"},
	{Label: "Ca 6 (19:00 - 21:00)", Start: "19:00", End: "21:00"},
}

// RescheduleHorizonDays is how far ahead a session can be moved.
const RescheduleHorizonDays = 7

// DateOption pairs the wire value of a selectable date with its display
// label (DD/M/YYYY, no zero padding, as the original portal rendered it).
type DateOption struct {
	Value string // YYYY-MM-DD
	Label string
}

// DateOptions enumerates the selectable dates: the RescheduleHorizonDays
// calendar days after "now", today excluded.
func DateOptions(now time.Time) []DateOption {
	opts := make([]DateOption, 0, RescheduleHorizonDays)
	for i := 1; i <= RescheduleHorizonDays; i++ {
		d := now.AddDate(0, 0, i)
		opts = append(opts, DateOption{
			Value: d.Format("2006-01-02"),
			Label: fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year()),
		})
	}
	return opts
}

// validDate reports whether value is one of the offered dates.
func validDate(now time.Time, value string) bool {
	for _, opt := range DateOptions(now) {
		if opt.Value == value {
			return true
		}
	}
	return false
}
