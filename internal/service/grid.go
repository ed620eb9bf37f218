package service

import (
	"context"
	"fmt"

	"timetable-service/internal/models"
)

// BuildGrid renders the week of one section as a 15x7 matrix. It never writes.
func (s *Service) BuildGrid(ctx context.Context, sectionID, weekID int64, p models.Principal) (*models.Grid, error) {
	const op = "service.BuildGrid"

	section, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%s: section: %w", op, err)
	}

	week, err := s.store.GetWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("%s: week: %w", op, err)
	}

	lessons, err := s.store.ListLessonViews(ctx, sectionID, weekID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Grid{
		Section: section,
		Week:    week,
		Dates:   models.WeekDates(week),
		Periods: models.VisiblePeriods(week.Display),
		Cells:   buildMatrix(lessons, p),
	}, nil
}

func buildMatrix(lessons []*models.LessonView, p models.Principal) models.Matrix {
	var m models.Matrix
	for i := range m {
		for j := range m[i] {
			m[i][j] = models.AvailableCell()
		}
	}

	for _, l := range lessons {
		day := l.Weekday.Index()
		if day < 0 {
			continue
		}

		canEdit := p.CanEdit(&l.LessonBlock)

		discipline, instructor := models.PendingLabel, ""
		if l.Status == models.LessonConfirmed || canEdit {
			discipline = l.DisciplineName
			instructor = l.InstructorName
			if instructor == "" {
				instructor = models.UnknownName
			}
		}

		var note string
		if l.Note != nil {
			note = *l.Note
		}

		for _, seg := range models.Segments(l.StartPeriod, l.DurationPeriods) {
			idx := seg.Start - 1
			if idx < 0 || idx >= models.PeriodsPerDay {
				continue
			}

			m[idx][day] = models.DisplayCell{
				Kind:           models.CellLesson,
				LessonID:       l.ID,
				Discipline:     discipline,
				Instructor:     instructor,
				Note:           note,
				Duration:       seg.Length,
				Status:         l.Status,
				CanEdit:        canEdit,
				IsContinuation: seg.Continuation,
			}
			for i := 1; i < seg.Length && idx+i < models.PeriodsPerDay; i++ {
				m[idx+i][day] = models.DisplayCell{Kind: models.CellSkip, LessonID: l.ID}
			}
		}
	}

	return m
}
