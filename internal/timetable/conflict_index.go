package timetable

import (
	"sort"
	"sync"

	"github.com/uniplan/scheduler-api/internal/models"
)

// ResourceKind selects which resource dimension a query targets.
type ResourceKind string

const (
	KindProfessor ResourceKind = "PROFESSOR"
	KindClassroom ResourceKind = "CLASSROOM"
)

// Interval is a half-open [start, end) time range within one day.
type Interval struct {
	Start models.TimeOfDay
	End   models.TimeOfDay
}

// Overlaps uses half-open semantics: back-to-back intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Slot is a candidate (day, start, end) triple produced by the enumerator.
type Slot struct {
	Day   models.DayOfWeek
	Start models.TimeOfDay
	End   models.TimeOfDay
}

// Interval returns the slot's time range.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

type bucketKey struct {
	Kind       ResourceKind
	ResourceID int64
	Term       models.TermKey
	Day        models.DayOfWeek
}

type indexEntry struct {
	scheduleID int64
	interval   Interval
}

// ConflictIndex is a derived in-memory occupancy map from
// (resource, term, day) buckets to committed schedules. It is a pure
// cache over the schedule store and can be rebuilt at any time by
// re-seeding a term. All mutation and check-then-commit sequences are
// serialised behind its lock; construct one per process and inject it
// into the services that need it.
type ConflictIndex struct {
	mu      sync.RWMutex
	buckets map[bucketKey][]indexEntry
	byID    map[int64][]bucketKey
	seeded  map[models.TermKey]bool
}

// NewConflictIndex constructs an empty index.
func NewConflictIndex() *ConflictIndex {
	return &ConflictIndex{
		buckets: make(map[bucketKey][]indexEntry),
		byID:    make(map[int64][]bucketKey),
		seeded:  make(map[models.TermKey]bool),
	}
}

// Query reports whether any committed schedule occupies the resource on
// the given day and term with an overlapping interval.
func (ci *ConflictIndex) Query(kind ResourceKind, resourceID int64, term models.TermKey, day models.DayOfWeek, interval Interval) (bool, int64) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.query(kind, resourceID, term, day, interval)
}

// Commit inserts the schedule into both its professor and classroom buckets.
func (ci *ConflictIndex) Commit(schedule models.Schedule) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	ci.commit(schedule)
}

// Remove is the inverse of Commit.
func (ci *ConflictIndex) Remove(scheduleID int64) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	ci.remove(scheduleID)
}

// SeedTerm loads the term's schedule set into the index and marks the
// term as seeded. The first seed wins: once a term is seeded, later
// calls are no-ops, so a racer holding a store listing captured before
// another writer's commit cannot wipe that commit from the index.
// Commits only happen against seeded terms, which makes the first
// seed's listing complete by construction.
func (ci *ConflictIndex) SeedTerm(term models.TermKey, schedules []models.Schedule) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	if ci.seeded[term] {
		return
	}
	ci.dropTerm(term)
	for _, s := range schedules {
		ci.commit(s)
	}
	ci.seeded[term] = true
}

// TermSeeded reports whether the term has been loaded from the store.
func (ci *ConflictIndex) TermSeeded(term models.TermKey) bool {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.seeded[term]
}

// Tx exposes unsynchronised index operations inside a Mutate critical
// section, so a check-then-commit sequence cannot interleave with a
// concurrent one.
type Tx struct {
	ci *ConflictIndex
}

// Mutate runs fn while holding the index lock exclusively.
func (ci *ConflictIndex) Mutate(fn func(tx *Tx) error) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return fn(&Tx{ci: ci})
}

// Query checks occupancy without acquiring the lock (held by Mutate).
func (tx *Tx) Query(kind ResourceKind, resourceID int64, term models.TermKey, day models.DayOfWeek, interval Interval) (bool, int64) {
	return tx.ci.query(kind, resourceID, term, day, interval)
}

// Commit inserts without acquiring the lock (held by Mutate).
func (tx *Tx) Commit(schedule models.Schedule) {
	tx.ci.commit(schedule)
}

// Remove deletes without acquiring the lock (held by Mutate).
func (tx *Tx) Remove(scheduleID int64) {
	tx.ci.remove(scheduleID)
}

func (ci *ConflictIndex) query(kind ResourceKind, resourceID int64, term models.TermKey, day models.DayOfWeek, interval Interval) (bool, int64) {
	key := bucketKey{Kind: kind, ResourceID: resourceID, Term: term, Day: day}
	entries := ci.buckets[key]
	// Entries are pairwise disjoint and sorted by start, so only the
	// last entry starting before interval.End can overlap.
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].interval.Start >= interval.End
	})
	if idx == 0 {
		return false, 0
	}
	prev := entries[idx-1]
	if prev.interval.Overlaps(interval) {
		return true, prev.scheduleID
	}
	return false, 0
}

func (ci *ConflictIndex) commit(schedule models.Schedule) {
	interval := Interval{Start: schedule.StartTime, End: schedule.EndTime}
	keys := []bucketKey{
		{Kind: KindProfessor, ResourceID: schedule.ProfessorID, Term: schedule.Term(), Day: schedule.DayOfWeek},
		{Kind: KindClassroom, ResourceID: schedule.ClassroomID, Term: schedule.Term(), Day: schedule.DayOfWeek},
	}
	for _, key := range keys {
		entries := ci.buckets[key]
		idx := sort.Search(len(entries), func(i int) bool {
			return entries[i].interval.Start >= interval.Start
		})
		entries = append(entries, indexEntry{})
		copy(entries[idx+1:], entries[idx:])
		entries[idx] = indexEntry{scheduleID: schedule.ID, interval: interval}
		ci.buckets[key] = entries
	}
	ci.byID[schedule.ID] = keys
}

func (ci *ConflictIndex) remove(scheduleID int64) {
	keys, ok := ci.byID[scheduleID]
	if !ok {
		return
	}
	for _, key := range keys {
		entries := ci.buckets[key]
		for i, e := range entries {
			if e.scheduleID == scheduleID {
				ci.buckets[key] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(ci.buckets[key]) == 0 {
			delete(ci.buckets, key)
		}
	}
	delete(ci.byID, scheduleID)
}

func (ci *ConflictIndex) dropTerm(term models.TermKey) {
	for key := range ci.buckets {
		if key.Term == term {
			for _, e := range ci.buckets[key] {
				delete(ci.byID, e.scheduleID)
			}
			delete(ci.buckets, key)
		}
	}
	delete(ci.seeded, term)
}
