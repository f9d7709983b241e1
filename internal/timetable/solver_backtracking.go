package timetable

import (
	"github.com/uniplan/scheduler-api/internal/models"
)

// planChoice records the triple a search branch picked for one course.
// Placed is false when the branch skipped the course.
type planChoice struct {
	Placed    bool
	Slot      Slot
	Classroom models.Classroom
	Professor models.Professor
}

type overlayKey struct {
	Kind       ResourceKind
	ResourceID int64
	Day        models.DayOfWeek
}

// overlay tracks occupancy introduced by the current search branch on
// top of the committed index state. Buckets stay small, so a linear
// overlap scan is enough.
type overlay map[overlayKey][]Interval

func (o overlay) conflicts(kind ResourceKind, resourceID int64, day models.DayOfWeek, interval Interval) bool {
	for _, occupied := range o[overlayKey{Kind: kind, ResourceID: resourceID, Day: day}] {
		if occupied.Overlaps(interval) {
			return true
		}
	}
	return false
}

func (o overlay) add(kind ResourceKind, resourceID int64, day models.DayOfWeek, interval Interval) {
	key := overlayKey{Kind: kind, ResourceID: resourceID, Day: day}
	o[key] = append(o[key], interval)
}

func (o overlay) drop(kind ResourceKind, resourceID int64, day models.DayOfWeek) {
	key := overlayKey{Kind: kind, ResourceID: resourceID, Day: day}
	o[key] = o[key][:len(o[key])-1]
	if len(o[key]) == 0 {
		delete(o, key)
	}
}

// backtrackingSearch explores placements course by course in input order.
// Candidates are tried in the same order greedy uses, with skipping the
// course as the last option, and only a strictly better placement count
// replaces the incumbent. Identical inputs therefore always yield the
// same plan, and the plan matches greedy whenever greedy is already
// maximal.
type backtrackingSearch struct {
	tx      *Tx
	req     SolveRequest
	courses []CourseRequest
	rooms   [][]models.Classroom
	profs   [][]models.Professor

	occupied  overlay
	current   []planChoice
	best      []planChoice
	bestCount int
}

func solveBacktracking(tx *Tx, req SolveRequest, rooms []models.Classroom, profs []models.Professor) ([]Assignment, []Unschedulable, error) {
	var unschedulable []Unschedulable

	// Courses with no viable professor or room can never be placed;
	// classify them up front and search only over the rest.
	search := &backtrackingSearch{
		tx:        tx,
		req:       req,
		occupied:  make(overlay),
		bestCount: -1,
	}
	for _, cr := range req.Courses {
		adequate := adequateRooms(rooms, cr.MinCapacity)
		if len(profs) == 0 || len(adequate) == 0 {
			unschedulable = append(unschedulable, Unschedulable{
				CourseID: cr.Course.ID,
				Reason:   exhaustionReason(profs, adequate),
			})
			continue
		}
		search.courses = append(search.courses, cr)
		search.rooms = append(search.rooms, adequate)
		search.profs = append(search.profs, professorsFor(cr.Course, profs))
	}

	search.current = make([]planChoice, len(search.courses))
	search.best = make([]planChoice, len(search.courses))
	search.explore(0, 0)

	assignments, committed, err := materialisePlan(tx, req, search.courses, search.best)
	if err != nil {
		rollback(tx, committed)
		return nil, nil, err
	}
	for i, choice := range search.best {
		if !choice.Placed {
			unschedulable = append(unschedulable, Unschedulable{
				CourseID: search.courses[i].Course.ID,
				Reason:   ReasonNoSlot,
			})
		}
	}
	return assignments, unschedulable, nil
}

func (s *backtrackingSearch) explore(idx, placed int) {
	if placed+(len(s.courses)-idx) <= s.bestCount {
		return
	}
	if idx == len(s.courses) {
		if placed > s.bestCount {
			s.bestCount = placed
			copy(s.best, s.current)
		}
		return
	}

	term := s.req.Term
	for _, slot := range s.req.Slots {
		interval := slot.Interval()
		for _, room := range s.rooms[idx] {
			if s.occupied.conflicts(KindClassroom, room.ID, slot.Day, interval) {
				continue
			}
			if conflict, _ := s.tx.Query(KindClassroom, room.ID, term, slot.Day, interval); conflict {
				continue
			}
			for _, prof := range s.profs[idx] {
				if s.occupied.conflicts(KindProfessor, prof.ID, slot.Day, interval) {
					continue
				}
				if conflict, _ := s.tx.Query(KindProfessor, prof.ID, term, slot.Day, interval); conflict {
					continue
				}

				s.occupied.add(KindClassroom, room.ID, slot.Day, interval)
				s.occupied.add(KindProfessor, prof.ID, slot.Day, interval)
				s.current[idx] = planChoice{Placed: true, Slot: slot, Classroom: room, Professor: prof}
				s.explore(idx+1, placed+1)
				s.occupied.drop(KindProfessor, prof.ID, slot.Day)
				s.occupied.drop(KindClassroom, room.ID, slot.Day)

				if s.bestCount == len(s.courses) {
					return
				}
			}
		}
	}

	s.current[idx] = planChoice{}
	s.explore(idx+1, placed)
}

// materialisePlan commits the winning plan in course order through the
// caller's store hook, mirroring greedy's commit path.
func materialisePlan(tx *Tx, req SolveRequest, courses []CourseRequest, plan []planChoice) ([]Assignment, []int64, error) {
	var assignments []Assignment
	var committed []int64
	for i, choice := range plan {
		if !choice.Placed {
			continue
		}
		schedule, err := req.Commit(courses[i].Course, choice.Professor, choice.Classroom, choice.Slot)
		if err != nil {
			return nil, committed, err
		}
		tx.Commit(schedule)
		committed = append(committed, schedule.ID)
		assignments = append(assignments, Assignment{
			Schedule:  schedule,
			Course:    courses[i].Course,
			Professor: choice.Professor,
			Classroom: choice.Classroom,
		})
	}
	return assignments, committed, nil
}
