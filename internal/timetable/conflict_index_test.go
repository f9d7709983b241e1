package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/models"
)

func mustTime(t *testing.T, value string) models.TimeOfDay {
	t.Helper()
	parsed, err := models.ParseTimeOfDay(value)
	require.NoError(t, err)
	return parsed
}

func fallTerm() models.TermKey {
	return models.TermKey{Semester: "FALL", AcademicYear: "2025-2026"}
}

func testSchedule(t *testing.T, id int64, day models.DayOfWeek, start, end string) models.Schedule {
	t.Helper()
	return models.Schedule{
		ID:           id,
		CourseID:     10,
		ProfessorID:  9,
		ClassroomID:  2,
		DayOfWeek:    day,
		StartTime:    mustTime(t, start),
		EndTime:      mustTime(t, end),
		Semester:     "FALL",
		AcademicYear: "2025-2026",
	}
}

func TestConflictIndexDetectsOverlap(t *testing.T) {
	index := NewConflictIndex()
	index.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))

	conflict, withID := index.Query(KindProfessor, 9, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "10:00"), End: mustTime(t, "12:00")})
	assert.True(t, conflict)
	assert.Equal(t, int64(1), withID)

	conflict, _ = index.Query(KindClassroom, 2, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "08:00"), End: mustTime(t, "09:30")})
	assert.True(t, conflict)
}

func TestConflictIndexBackToBackDoesNotConflict(t *testing.T) {
	index := NewConflictIndex()
	index.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))

	conflict, _ := index.Query(KindClassroom, 2, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "11:00"), End: mustTime(t, "13:00")})
	assert.False(t, conflict)

	conflict, _ = index.Query(KindClassroom, 2, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "07:00"), End: mustTime(t, "09:00")})
	assert.False(t, conflict)
}

func TestConflictIndexScopesByResourceDayAndTerm(t *testing.T) {
	index := NewConflictIndex()
	index.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))
	interval := Interval{Start: mustTime(t, "09:00"), End: mustTime(t, "11:00")}

	conflict, _ := index.Query(KindProfessor, 8, fallTerm(), models.Monday, interval)
	assert.False(t, conflict, "different professor")

	conflict, _ = index.Query(KindClassroom, 3, fallTerm(), models.Monday, interval)
	assert.False(t, conflict, "different classroom")

	conflict, _ = index.Query(KindProfessor, 9, fallTerm(), models.Tuesday, interval)
	assert.False(t, conflict, "different day")

	spring := models.TermKey{Semester: "SPRING", AcademicYear: "2025-2026"}
	conflict, _ = index.Query(KindProfessor, 9, spring, models.Monday, interval)
	assert.False(t, conflict, "different term")
}

func TestConflictIndexRemove(t *testing.T) {
	index := NewConflictIndex()
	index.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))
	index.Remove(1)

	conflict, _ := index.Query(KindProfessor, 9, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "09:00"), End: mustTime(t, "11:00")})
	assert.False(t, conflict)

	// Removing an unknown ID is a no-op.
	index.Remove(42)
}

func TestConflictIndexSeedTermReplacesExistingEntries(t *testing.T) {
	index := NewConflictIndex()
	index.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))
	require.False(t, index.TermSeeded(fallTerm()))

	fresh := testSchedule(t, 2, models.Wednesday, "14:00", "16:00")
	index.SeedTerm(fallTerm(), []models.Schedule{fresh})

	assert.True(t, index.TermSeeded(fallTerm()))

	conflict, _ := index.Query(KindProfessor, 9, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "09:00"), End: mustTime(t, "11:00")})
	assert.False(t, conflict, "stale entry should be dropped by re-seed")

	conflict, withID := index.Query(KindProfessor, 9, fallTerm(), models.Wednesday,
		Interval{Start: mustTime(t, "15:00"), End: mustTime(t, "17:00")})
	assert.True(t, conflict)
	assert.Equal(t, int64(2), withID)
}

func TestConflictIndexSeedTermFirstSeedWins(t *testing.T) {
	index := NewConflictIndex()
	index.SeedTerm(fallTerm(), nil)
	index.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))

	// A racer that listed the store before the commit above must not be
	// able to wipe it with its stale snapshot.
	index.SeedTerm(fallTerm(), nil)

	conflict, withID := index.Query(KindProfessor, 9, fallTerm(), models.Monday,
		Interval{Start: mustTime(t, "10:00"), End: mustTime(t, "12:00")})
	assert.True(t, conflict)
	assert.Equal(t, int64(1), withID)
}

func TestConflictIndexMutateCheckThenCommit(t *testing.T) {
	index := NewConflictIndex()
	interval := Interval{Start: mustTime(t, "09:00"), End: mustTime(t, "11:00")}

	err := index.Mutate(func(tx *Tx) error {
		conflict, _ := tx.Query(KindClassroom, 2, fallTerm(), models.Monday, interval)
		require.False(t, conflict)
		tx.Commit(testSchedule(t, 1, models.Monday, "09:00", "11:00"))
		return nil
	})
	require.NoError(t, err)

	conflict, _ := index.Query(KindClassroom, 2, fallTerm(), models.Monday, interval)
	assert.True(t, conflict)
}
