package models

import "time"

// LessonView is a LessonBlock joined with the names needed to render it.
type LessonView struct {
	LessonBlock
	DisciplineName string    `db:"discipline_name"`
	InstructorName string    `db:"instructor_name"`
	SectionName    string    `db:"section_name"`
	WeekName       string    `db:"week_name"`
	WeekStart      time.Time `db:"week_start"`
	WeekEnd        time.Time `db:"week_end"`
}

type DayDate struct {
	Weekday   Weekday   `json:"weekday"`
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	Visible   bool      `json:"visible"`
	MaxPeriod int       `json:"max_period"`
}

// Grid is the rendered weekly timetable of one section.
type Grid struct {
	Section *Section
	Week    *Week
	Dates   [DaysPerWeek]DayDate
	Periods []int
	Cells   Matrix
}

// Segment is one break-delimited piece of a lesson span.
type Segment struct {
	Start        int
	Length       int
	Continuation bool
}

// Segments cuts the span [start, start+duration-1] at the period group boundaries.
func Segments(start, duration int) []Segment {
	var out []Segment

	cur := start
	remaining := duration
	for remaining > 0 {
		end := PeriodGroupEnd(cur)
		if last := cur + remaining - 1; last < end {
			end = last
		}
		length := end - cur + 1
		if length <= 0 {
			break
		}

		out = append(out, Segment{Start: cur, Length: length, Continuation: len(out) > 0})
		cur += length
		remaining -= length
	}

	return out
}

// WeekDates returns the seven columns of w with their dates and visibility.
func WeekDates(w *Week) [DaysPerWeek]DayDate {
	var out [DaysPerWeek]DayDate
	for i, day := range Weekdays {
		date := w.DayDate(i)
		dd := DayDate{
			Weekday:   day,
			Date:      date,
			Label:     date.Format("02/01"),
			Visible:   true,
			MaxPeriod: lastVisiblePeriod(w.Display),
		}

		switch day {
		case Saturday:
			dd.Visible = w.Display.ShowSaturday && w.Display.SaturdayPeriods > 0
			dd.MaxPeriod = clampPeriod(w.Display.SaturdayPeriods)
		case Sunday:
			dd.Visible = w.Display.ShowSunday && w.Display.SundayPeriods > 0
			dd.MaxPeriod = clampPeriod(w.Display.SundayPeriods)
		}
		if !dd.Visible {
			dd.MaxPeriod = 0
		}

		out[i] = dd
	}
	return out
}

// VisiblePeriods lists the grid rows to render: 1-12 always, 13-15 on demand.
func VisiblePeriods(d WeekDisplay) []int {
	periods := make([]int, 0, PeriodsPerDay)
	for p := 1; p <= 12; p++ {
		periods = append(periods, p)
	}
	if d.ShowPeriod13 {
		periods = append(periods, 13)
	}
	if d.ShowPeriod14 {
		periods = append(periods, 14)
	}
	if d.ShowPeriod15 {
		periods = append(periods, 15)
	}
	return periods
}

func lastVisiblePeriod(d WeekDisplay) int {
	p := VisiblePeriods(d)
	return p[len(p)-1]
}

func clampPeriod(n int) int {
	switch {
	case n < 0:
		return 0
	case n > PeriodsPerDay:
		return PeriodsPerDay
	}
	return n
}
