package service

import (
	"context"
	"fmt"

	"timetable-service/internal/models"
)

type AvailableDiscipline struct {
	ID        int64
	Name      string
	Remaining int
}

// EditContext is everything the timetable editor needs in one read.
type EditContext struct {
	Grid                  *models.Grid
	Disciplines           []AvailableDiscipline
	Instructors           []*models.Instructor
	IsAdmin               bool
	PrincipalInstructorID *int64
}

func (s *Service) EditContext(ctx context.Context, sectionID, weekID int64, p models.Principal) (*EditContext, error) {
	const op = "service.EditContext"

	grid, err := s.BuildGrid(ctx, sectionID, weekID, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var disciplines []*models.Discipline
	switch {
	case p.IsAdminLike():
		disciplines, err = s.store.ListDisciplinesByCycle(ctx, grid.Week.CycleID)
	case p.Role == models.RoleInstructor && p.InstructorID != nil:
		disciplines, err = s.store.ListAssignedDisciplines(ctx, sectionID, grid.Week.CycleID, *p.InstructorID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: disciplines: %w", op, err)
	}

	available := make([]AvailableDiscipline, 0, len(disciplines))
	for _, d := range disciplines {
		remaining, err := remainingHours(ctx, s.store, d.ID, sectionID, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: discipline %d: %w", op, d.ID, err)
		}
		available = append(available, AvailableDiscipline{
			ID:        d.ID,
			Name:      d.Name,
			Remaining: remaining,
		})
	}

	instructors, err := s.store.ListInstructors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: instructors: %w", op, err)
	}

	return &EditContext{
		Grid:                  grid,
		Disciplines:           available,
		Instructors:           instructors,
		IsAdmin:               p.IsAdminLike(),
		PrincipalInstructorID: p.InstructorID,
	}, nil
}
