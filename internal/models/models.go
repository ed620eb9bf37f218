package models

import "time"

const (
	PeriodsPerDay = 15
	DaysPerWeek   = 7
)

type LessonStatus string

const (
	LessonPending   LessonStatus = "pending"
	LessonConfirmed LessonStatus = "confirmed"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays is the grid column order; the index is the offset from Week.StartDate.
var Weekdays = [DaysPerWeek]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the column of d in the grid, or -1 for an unknown value.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

type LessonBlock struct {
	ID              int64        `db:"id"`
	SectionID       int64        `db:"section_id"`
	WeekID          int64        `db:"week_id"`
	Weekday         Weekday      `db:"weekday"`
	StartPeriod     int          `db:"start_period"`
	DurationPeriods int          `db:"duration_periods"`
	DisciplineID    int64        `db:"discipline_id"`
	InstructorID    int64        `db:"instructor_id"`
	Status          LessonStatus `db:"status"`
	Note            *string      `db:"note"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

// EndPeriod is the last period the block occupies.
func (b *LessonBlock) EndPeriod() int {
	return b.StartPeriod + b.DurationPeriods - 1
}

// Overlaps reports whether b and the span [start, end] share a period on the same day.
func (b *LessonBlock) Overlaps(day Weekday, start, end int) bool {
	if b.Weekday != day {
		return false
	}
	return b.StartPeriod <= end && start <= b.EndPeriod()
}

type Section struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	SchoolID int64  `db:"school_id"`
}

type Discipline struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	PlannedHours int    `db:"planned_hours"`
	SchoolID     int64  `db:"school_id"`
	CycleID      int64  `db:"cycle_id"`
}

type Instructor struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"user_id"`
	DisplayName string `db:"display_name"`
}

// WeekDisplay holds the per-week rendering flags. None of them restrict scheduling.
type WeekDisplay struct {
	ShowPeriod13    bool `db:"show_period_13"`
	ShowPeriod14    bool `db:"show_period_14"`
	ShowPeriod15    bool `db:"show_period_15"`
	ShowSaturday    bool `db:"show_saturday"`
	SaturdayPeriods int  `db:"saturday_periods"`
	ShowSunday      bool `db:"show_sunday"`
	SundayPeriods   int  `db:"sunday_periods"`
}

type Week struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CycleID   int64     `db:"cycle_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Display   WeekDisplay
}

// Contains reports whether day falls inside the week, comparing calendar dates only.
func (w *Week) Contains(day time.Time) bool {
	d := dateOf(day)
	return !d.Before(dateOf(w.StartDate)) && !d.After(dateOf(w.EndDate))
}

// DayDate returns the calendar date of the given column.
func (w *Week) DayDate(idx int) time.Time {
	return dateOf(w.StartDate).AddDate(0, 0, idx)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
