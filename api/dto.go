package api

import (
	"time"

	"timetable-service/internal/models"
	"timetable-service/internal/service"
)

const dateLayout = "2006-01-02"

type LessonRequest struct {
	SectionID       int64  `json:"section_id" validate:"required,min=1"`
	WeekID          int64  `json:"week_id" validate:"required,min=1"`
	Weekday         string `json:"weekday" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartPeriod     int    `json:"start_period" validate:"required,min=1,max=15"`
	DisciplineID    int64  `json:"discipline_id" validate:"required,min=1"`
	DurationPeriods int    `json:"duration_periods" validate:"omitempty,min=1,max=15"`
	InstructorID    *int64 `json:"instructor_id,omitempty" validate:"omitempty,min=1"`
	Note            string `json:"note" validate:"max=500"`
}

func (r LessonRequest) Input(id *int64) service.LessonInput {
	return service.LessonInput{
		ID:              id,
		SectionID:       r.SectionID,
		WeekID:          r.WeekID,
		Weekday:         models.Weekday(r.Weekday),
		StartPeriod:     r.StartPeriod,
		DisciplineID:    r.DisciplineID,
		DurationPeriods: r.DurationPeriods,
		InstructorID:    r.InstructorID,
		Note:            r.Note,
	}
}

type LessonResponse struct {
	ID              int64     `json:"id"`
	SectionID       int64     `json:"section_id"`
	WeekID          int64     `json:"week_id"`
	Weekday         string    `json:"weekday"`
	StartPeriod     int       `json:"start_period"`
	EndPeriod       int       `json:"end_period"`
	DurationPeriods int       `json:"duration_periods"`
	DisciplineID    int64     `json:"discipline_id"`
	InstructorID    int64     `json:"instructor_id"`
	Status          string    `json:"status"`
	Note            *string   `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

func NewLessonResponse(l *models.LessonBlock) LessonResponse {
	return LessonResponse{
		ID:              l.ID,
		SectionID:       l.SectionID,
		WeekID:          l.WeekID,
		Weekday:         string(l.Weekday),
		StartPeriod:     l.StartPeriod,
		EndPeriod:       l.EndPeriod(),
		DurationPeriods: l.DurationPeriods,
		DisciplineID:    l.DisciplineID,
		InstructorID:    l.InstructorID,
		Status:          string(l.Status),
		Note:            l.Note,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

type LessonDetailsResponse struct {
	ID              int64   `json:"id"`
	DisciplineID    int64   `json:"discipline_id"`
	InstructorID    int64   `json:"instructor_id"`
	DurationPeriods int     `json:"duration_periods"`
	Note            *string `json:"note,omitempty"`
}

func NewLessonDetailsResponse(d *service.LessonDetails) LessonDetailsResponse {
	return LessonDetailsResponse{
		ID:              d.ID,
		DisciplineID:    d.DisciplineID,
		InstructorID:    d.InstructorID,
		DurationPeriods: d.DurationPeriods,
		Note:            d.Note,
	}
}

type SectionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DayResponse struct {
	Weekday   string `json:"weekday"`
	Date      string `json:"date"`
	Label     string `json:"label"`
	Visible   bool   `json:"visible"`
	MaxPeriod int    `json:"max_period"`
}

type WeekResponse struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	CycleID         int64         `json:"cycle_id"`
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	ShowPeriod13    bool          `json:"show_period_13"`
	ShowPeriod14    bool          `json:"show_period_14"`
	ShowPeriod15    bool          `json:"show_period_15"`
	ShowSaturday    bool          `json:"show_saturday"`
	SaturdayPeriods int           `json:"saturday_periods"`
	ShowSunday      bool          `json:"show_sunday"`
	SundayPeriods   int           `json:"sunday_periods"`
	Days            []DayResponse `json:"days"`
}

func NewWeekResponse(w *models.Week) WeekResponse {
	dates := models.WeekDates(w)
	days := make([]DayResponse, 0, len(dates))
	for _, d := range dates {
		days = append(days, DayResponse{
			Weekday:   string(d.Weekday),
			Date:      d.Date.Format(dateLayout),
			Label:     d.Label,
			Visible:   d.Visible,
			MaxPeriod: d.MaxPeriod,
		})
	}

	return WeekResponse{
		ID:              w.ID,
		Name:            w.Name,
		CycleID:         w.CycleID,
		StartDate:       w.StartDate.Format(dateLayout),
		EndDate:         w.EndDate.Format(dateLayout),
		ShowPeriod13:    w.Display.ShowPeriod13,
		ShowPeriod14:    w.Display.ShowPeriod14,
		ShowPeriod15:    w.Display.ShowPeriod15,
		ShowSaturday:    w.Display.ShowSaturday,
		SaturdayPeriods: w.Display.SaturdayPeriods,
		ShowSunday:      w.Display.ShowSunday,
		SundayPeriods:   w.Display.SundayPeriods,
		Days:            days,
	}
}

type GridRow struct {
	Period  int                  `json:"period"`
	Visible bool                 `json:"visible"`
	Cells   []models.DisplayCell `json:"cells"`
}

type GridResponse struct {
	Section SectionResponse `json:"section"`
	Week    WeekResponse    `json:"week"`
	Periods []int           `json:"periods"`
	Rows    []GridRow       `json:"rows"`
}

func NewGridResponse(g *models.Grid) GridResponse {
	visible := make(map[int]bool, len(g.Periods))
	for _, p := range g.Periods {
		visible[p] = true
	}

	rows := make([]GridRow, 0, models.PeriodsPerDay)
	for i, cells := range g.Cells {
		rows = append(rows, GridRow{
			Period:  i + 1,
			Visible: visible[i+1],
			Cells:   cells[:],
		})
	}

	return GridResponse{
		Section: SectionResponse{ID: g.Section.ID, Name: g.Section.Name},
		Week:    NewWeekResponse(g.Week),
		Periods: g.Periods,
		Rows:    rows,
	}
}

type DisciplineOption struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

type InstructorOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type EditContextResponse struct {
	Grid         GridResponse       `json:"grid"`
	Disciplines  []DisciplineOption `json:"disciplines"`
	Instructors  []InstructorOption `json:"instructors"`
	IsAdmin      bool               `json:"is_admin"`
	InstructorID *int64             `json:"instructor_id,omitempty"`
}

func NewEditContextResponse(c *service.EditContext) EditContextResponse {
	disciplines := make([]DisciplineOption, 0, len(c.Disciplines))
	for _, d := range c.Disciplines {
		disciplines = append(disciplines, DisciplineOption{ID: d.ID, Name: d.Name, Remaining: d.Remaining})
	}

	instructors := make([]InstructorOption, 0, len(c.Instructors))
	for _, i := range c.Instructors {
		instructors = append(instructors, InstructorOption{ID: i.ID, Name: i.DisplayName})
	}

	return EditContextResponse{
		Grid:         NewGridResponse(c.Grid),
		Disciplines:  disciplines,
		Instructors:  instructors,
		IsAdmin:      c.IsAdmin,
		InstructorID: c.PrincipalInstructorID,
	}
}

type PendingLessonResponse struct {
	ID              int64     `json:"id"`
	Discipline      string    `json:"discipline"`
	Instructor      string    `json:"instructor"`
	Section         string    `json:"section"`
	Week            string    `json:"week"`
	WeekStart       string    `json:"week_start"`
	WeekEnd         string    `json:"week_end"`
	Weekday         string    `json:"weekday"`
	StartPeriod     int       `json:"start_period"`
	DurationPeriods int       `json:"duration_periods"`
	Note            *string   `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewPendingLessonResponse(v *models.LessonView) PendingLessonResponse {
	instructor := v.InstructorName
	if instructor == "" {
		instructor = models.UnknownName
	}

	return PendingLessonResponse{
		ID:              v.ID,
		Discipline:      v.DisciplineName,
		Instructor:      instructor,
		Section:         v.SectionName,
		Week:            v.WeekName,
		WeekStart:       v.WeekStart.Format(dateLayout),
		WeekEnd:         v.WeekEnd.Format(dateLayout),
		Weekday:         string(v.Weekday),
		StartPeriod:     v.StartPeriod,
		DurationPeriods: v.DurationPeriods,
		Note:            v.Note,
		CreatedAt:       v.CreatedAt,
	}
}

type DecisionResponse struct {
	LessonID int64  `json:"lesson_id"`
	Action   string `json:"action"`
	Status   string `json:"status,omitempty"`
	Changed  bool   `json:"changed"`
	Message  string `json:"message"`
}

func NewDecisionResponse(d *service.Decision) DecisionResponse {
	return DecisionResponse{
		LessonID: d.LessonID,
		Action:   string(d.Action),
		Status:   string(d.Status),
		Changed:  d.Changed,
		Message:  d.Message,
	}
}

type RemainingResponse struct {
	DisciplineID int64 `json:"discipline_id"`
	SectionID    int64 `json:"section_id"`
	Remaining    int   `json:"remaining"`
}
