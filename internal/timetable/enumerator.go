package timetable

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/uniplan/scheduler-api/internal/models"
)

// EnumerateSlots expands preferred days and start times into the ordered
// candidate search space: days form the outer loop and start times the
// inner loop, both iterated in the caller-supplied order so identical
// requests always produce identical candidate sequences.
func EnumerateSlots(days []models.DayOfWeek, starts []models.TimeOfDay, durationHours int) ([]Slot, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one preferred day is required")
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("at least one preferred start time is required")
	}
	if durationHours <= 0 {
		return nil, fmt.Errorf("duration must be a positive number of hours")
	}

	if invalid, found := lo.Find(days, func(d models.DayOfWeek) bool { return !d.Valid() }); found {
		return nil, fmt.Errorf("invalid day of week %q", string(invalid))
	}

	ends := make([]models.TimeOfDay, len(starts))
	for i, start := range starts {
		end := start.AddHours(durationHours)
		if !end.Valid() {
			return nil, fmt.Errorf("slot %s + %dh crosses into the following day", start, durationHours)
		}
		ends[i] = end
	}

	slots := make([]Slot, 0, len(days)*len(starts))
	for _, day := range days {
		for i, start := range starts {
			slots = append(slots, Slot{Day: day, Start: start, End: ends[i]})
		}
	}
	return slots, nil
}
