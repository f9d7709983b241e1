package timetable

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/uniplan/scheduler-api/internal/models"
)

// Strategy selects the assignment algorithm.
type Strategy string

const (
	// GreedyFirstFit commits the first non-conflicting triple per course,
	// in input order, without backtracking. Reproducible and fast, but it
	// does not guarantee a maximal schedulable subset.
	GreedyFirstFit Strategy = "greedy_first_fit"
	// BacktrackingMaxAssignment searches the same candidate space for an
	// assignment scheduling as many courses as possible, keeping the
	// first-found maximum so output stays deterministic.
	BacktrackingMaxAssignment Strategy = "backtracking_max_assignment"
)

// UnschedulableReason explains why a course could not be placed.
type UnschedulableReason string

const (
	ReasonNoSlot      UnschedulableReason = "no_slot"
	ReasonNoCapacity  UnschedulableReason = "no_capacity"
	ReasonNoProfessor UnschedulableReason = "no_professor"
)

// CourseRequest pairs a course with its required minimum room capacity.
type CourseRequest struct {
	Course      models.Course
	MinCapacity int
}

// Assignment is a committed (course, professor, classroom, slot) result.
type Assignment struct {
	Schedule  models.Schedule
	Course    models.Course
	Professor models.Professor
	Classroom models.Classroom
}

// Unschedulable records a course that exhausted its candidates.
type Unschedulable struct {
	CourseID int64
	Reason   UnschedulableReason
}

// CommitFunc materialises a chosen triple into a persisted schedule.
// A failure aborts the whole run and rolls back its index commits.
type CommitFunc func(course models.Course, professor models.Professor, classroom models.Classroom, slot Slot) (models.Schedule, error)

// SolveRequest carries the full candidate space for one generation run.
// Courses are processed in the order given; slots must already be in
// enumerator order.
type SolveRequest struct {
	Term       models.TermKey
	Courses    []CourseRequest
	Slots      []Slot
	Professors []models.Professor
	Classrooms []models.Classroom
	Commit     CommitFunc
}

// Solver walks the candidate space against a conflict index and commits
// non-conflicting assignments. The index lock is held for the entire
// run, so concurrent runs and manual creations serialise their
// check-then-commit sequences.
type Solver struct {
	index    *ConflictIndex
	strategy Strategy
}

// NewSolver builds a solver bound to the shared conflict index.
func NewSolver(index *ConflictIndex, strategy Strategy) *Solver {
	if strategy == "" {
		strategy = GreedyFirstFit
	}
	return &Solver{index: index, strategy: strategy}
}

// Solve assigns each course a slot, professor and classroom, honouring
// the no-double-booking and capacity invariants. Every input course
// appears in exactly one of the returned partitions. A commit failure is
// fatal for the run: committed index entries are rolled back and the
// error returned as-is.
func (s *Solver) Solve(req SolveRequest) ([]Assignment, []Unschedulable, error) {
	rooms := make([]models.Classroom, len(req.Classrooms))
	copy(rooms, req.Classrooms)
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Capacity == rooms[j].Capacity {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Capacity < rooms[j].Capacity
	})

	profs := make([]models.Professor, len(req.Professors))
	copy(profs, req.Professors)
	sort.SliceStable(profs, func(i, j int) bool { return profs[i].ID < profs[j].ID })

	var (
		assignments   []Assignment
		unschedulable []Unschedulable
		err           error
	)
	mutateErr := s.index.Mutate(func(tx *Tx) error {
		switch s.strategy {
		case BacktrackingMaxAssignment:
			assignments, unschedulable, err = solveBacktracking(tx, req, rooms, profs)
		default:
			assignments, unschedulable, err = solveGreedy(tx, req, rooms, profs)
		}
		return err
	})
	if mutateErr != nil {
		return nil, nil, mutateErr
	}
	return assignments, unschedulable, nil
}

func solveGreedy(tx *Tx, req SolveRequest, rooms []models.Classroom, profs []models.Professor) ([]Assignment, []Unschedulable, error) {
	assignments := make([]Assignment, 0, len(req.Courses))
	var unschedulable []Unschedulable
	var committed []int64

	for _, cr := range req.Courses {
		adequate := adequateRooms(rooms, cr.MinCapacity)
		if len(profs) == 0 || len(adequate) == 0 {
			unschedulable = append(unschedulable, Unschedulable{
				CourseID: cr.Course.ID,
				Reason:   exhaustionReason(profs, adequate),
			})
			continue
		}
		candidates := professorsFor(cr.Course, profs)

		assignment, found, err := placeCourse(tx, req, cr, adequate, candidates)
		if err != nil {
			rollback(tx, committed)
			return nil, nil, err
		}
		if !found {
			unschedulable = append(unschedulable, Unschedulable{CourseID: cr.Course.ID, Reason: ReasonNoSlot})
			continue
		}
		committed = append(committed, assignment.Schedule.ID)
		assignments = append(assignments, assignment)
	}
	return assignments, unschedulable, nil
}

// placeCourse tries slots, then rooms smallest-adequate-first, then
// professors, committing the first conflict-free triple so later courses
// in the same run see it.
func placeCourse(tx *Tx, req SolveRequest, cr CourseRequest, rooms []models.Classroom, profs []models.Professor) (Assignment, bool, error) {
	for _, slot := range req.Slots {
		interval := slot.Interval()
		for _, room := range rooms {
			if conflict, _ := tx.Query(KindClassroom, room.ID, req.Term, slot.Day, interval); conflict {
				continue
			}
			for _, prof := range profs {
				if conflict, _ := tx.Query(KindProfessor, prof.ID, req.Term, slot.Day, interval); conflict {
					continue
				}
				schedule, err := req.Commit(cr.Course, prof, room, slot)
				if err != nil {
					return Assignment{}, false, err
				}
				tx.Commit(schedule)
				return Assignment{
					Schedule:  schedule,
					Course:    cr.Course,
					Professor: prof,
					Classroom: room,
				}, true, nil
			}
		}
	}
	return Assignment{}, false, nil
}

// adequateRooms keeps rooms with sufficient capacity; input is already
// sorted ascending so the smallest adequate room comes first.
func adequateRooms(rooms []models.Classroom, minCapacity int) []models.Classroom {
	return lo.Filter(rooms, func(room models.Classroom, _ int) bool {
		return room.Capacity >= minCapacity
	})
}

// professorsFor ranks department matches ahead of everyone else, each
// group kept in identity order. The department match is a preference,
// not a constraint.
func professorsFor(course models.Course, profs []models.Professor) []models.Professor {
	matched := lo.Filter(profs, func(p models.Professor, _ int) bool {
		return strings.EqualFold(p.Department, course.Department)
	})
	rest := lo.Filter(profs, func(p models.Professor, _ int) bool {
		return !strings.EqualFold(p.Department, course.Department)
	})
	return append(matched, rest...)
}

// exhaustionReason classifies a course that never had a viable candidate.
// Missing professors win over missing capacity when both apply.
func exhaustionReason(profs []models.Professor, adequate []models.Classroom) UnschedulableReason {
	if len(profs) == 0 {
		return ReasonNoProfessor
	}
	if len(adequate) == 0 {
		return ReasonNoCapacity
	}
	return ReasonNoSlot
}

func rollback(tx *Tx, scheduleIDs []int64) {
	for _, id := range scheduleIDs {
		tx.Remove(id)
	}
}
