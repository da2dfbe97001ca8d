package schedule

import (
	"strings"
	"time"

	"github.com/bktutor/session-portal/internal/portal"
)

// Selection is the user's reschedule choice as the form captures it.
type Selection struct {
	Date      string // YYYY-MM-DD, must be one of DateOptions
	SlotIndex int    // index into Slots
	Mode      portal.Mode
	MaxSlot   int
	Place     string
}

// BuildPatch validates a selection and packages it into the update patch the
// collaborator expects. The slot's HH:MM boundaries are concatenated with
// the chosen date to produce timestamps of the exact form
// "YYYY-MM-DD HH:MM:00"; no time arithmetic is involved.
//
// Capacity is only checked to be non-negative here. Whether the new
// capacity may fall below the current booking count is the collaborator's
// call, and it rejects the patch if so.
func BuildPatch(now time.Time, sel Selection) (portal.ReschedulePatch, error) {
	if !validDate(now, sel.Date) {
		return portal.ReschedulePatch{}, &portal.ValidationError{Message: "invalid date"}
	}
	if sel.SlotIndex < 0 || sel.SlotIndex >= len(Slots) {
		return portal.ReschedulePatch{}, &portal.ValidationError{Message: "invalid slot"}
	}
	if strings.TrimSpace(sel.Place) == "" {
		return portal.ReschedulePatch{}, &portal.ValidationError{Message: "place must not be empty"}
	}
	if sel.MaxSlot < 0 {
		return portal.ReschedulePatch{}, &portal.ValidationError{Message: "capacity must not be negative"}
	}
	mode := portal.ModeOnline
	if sel.Mode != "" {
		m, ok := portal.ParseMode(string(sel.Mode))
		if !ok {
			return portal.ReschedulePatch{}, &portal.ValidationError{Message: "invalid mode"}
		}
		mode = m
	}

	slot := Slots[sel.SlotIndex]
	return portal.ReschedulePatch{
		StartTime: sel.Date + " " + slot.Start + ":00",
		EndTime:   sel.Date + " " + slot.End + ":00",
		Place:     sel.Place,
		Mode:      mode,
		MaxSlot:   sel.MaxSlot,
	}, nil
}
