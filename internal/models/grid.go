package models

type CellKind string

const (
	CellAvailable CellKind = "available"
	CellLesson    CellKind = "lesson"
	CellSkip      CellKind = "skip"
)

const (
	AvailableLabel = "At the disposal of the cadet command"
	PendingLabel   = "awaiting approval"
	UnknownName    = "N/D"
)

// DisplayCell is one (period, weekday) position of a rendered timetable.
// Skip cells are covered by the lesson cell above them.
type DisplayCell struct {
	Kind           CellKind     `json:"kind"`
	LessonID       int64        `json:"lesson_id,omitempty"`
	Discipline     string       `json:"discipline,omitempty"`
	Instructor     string       `json:"instructor,omitempty"`
	Note           string       `json:"note,omitempty"`
	Duration       int          `json:"duration,omitempty"`
	Status         LessonStatus `json:"status,omitempty"`
	CanEdit        bool         `json:"can_edit"`
	IsContinuation bool         `json:"is_continuation"`
}

func AvailableCell() DisplayCell {
	return DisplayCell{
		Kind:       CellAvailable,
		Discipline: AvailableLabel,
		Duration:   1,
		Status:     LessonConfirmed,
	}
}

// Matrix is indexed [period-1][weekday index].
type Matrix [PeriodsPerDay][DaysPerWeek]DisplayCell

// PeriodGroupEnd returns the last period of the break-delimited group holding p.
// Groups are 1-3, 4-9 and 10-15.
func PeriodGroupEnd(p int) int {
	switch {
	case p <= 3:
		return 3
	case p <= 9:
		return 9
	default:
		return PeriodsPerDay
	}
}
