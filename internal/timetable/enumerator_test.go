package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/models"
)

func TestEnumerateSlotsOrdering(t *testing.T) {
	days := []models.DayOfWeek{models.Wednesday, models.Monday}
	starts := []models.TimeOfDay{mustTime(t, "13:00"), mustTime(t, "09:00")}

	slots, err := EnumerateSlots(days, starts, 2)
	require.NoError(t, err)

	expected := []Slot{
		{Day: models.Wednesday, Start: mustTime(t, "13:00"), End: mustTime(t, "15:00")},
		{Day: models.Wednesday, Start: mustTime(t, "09:00"), End: mustTime(t, "11:00")},
		{Day: models.Monday, Start: mustTime(t, "13:00"), End: mustTime(t, "15:00")},
		{Day: models.Monday, Start: mustTime(t, "09:00"), End: mustTime(t, "11:00")},
	}
	assert.Equal(t, expected, slots, "days are the outer loop and caller order is preserved")
}

func TestEnumerateSlotsDeterministic(t *testing.T) {
	days := []models.DayOfWeek{models.Monday, models.Tuesday, models.Friday}
	starts := []models.TimeOfDay{mustTime(t, "09:00"), mustTime(t, "11:00"), mustTime(t, "14:00")}

	first, err := EnumerateSlots(days, starts, 1)
	require.NoError(t, err)
	second, err := EnumerateSlots(days, starts, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 9)
}

func TestEnumerateSlotsValidation(t *testing.T) {
	starts := []models.TimeOfDay{mustTime(t, "09:00")}
	days := []models.DayOfWeek{models.Monday}

	_, err := EnumerateSlots(nil, starts, 2)
	assert.ErrorContains(t, err, "at least one preferred day")

	_, err = EnumerateSlots(days, nil, 2)
	assert.ErrorContains(t, err, "at least one preferred start time")

	_, err = EnumerateSlots(days, starts, 0)
	assert.ErrorContains(t, err, "positive")

	_, err = EnumerateSlots([]models.DayOfWeek{"FUNDAY"}, starts, 2)
	assert.ErrorContains(t, err, "invalid day of week")
}

func TestEnumerateSlotsRejectsMidnightCrossing(t *testing.T) {
	_, err := EnumerateSlots(
		[]models.DayOfWeek{models.Monday},
		[]models.TimeOfDay{mustTime(t, "23:00")},
		2,
	)
	assert.ErrorContains(t, err, "crosses into the following day")

	// A slot ending exactly at midnight stays inside the day.
	slots, err := EnumerateSlots(
		[]models.DayOfWeek{models.Monday},
		[]models.TimeOfDay{mustTime(t, "22:00")},
		2,
	)
	require.NoError(t, err)
	assert.Equal(t, "24:00", slots[0].End.String())
}
