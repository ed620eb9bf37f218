package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timetable-service/internal/models"
	"timetable-service/pkg/response"
)

// SelectWeek picks the week to show: the requested one, else the week of the
// cycle containing today, else the cycle's latest week.
func (s *Service) SelectWeek(ctx context.Context, cycleID int64, weekID *int64) (*models.Week, error) {
	const op = "service.SelectWeek"

	if weekID != nil {
		week, err := s.store.GetWeek(ctx, *weekID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return week, nil
	}

	week, err := s.store.FindWeekContaining(ctx, cycleID, s.today())
	if err == nil {
		return week, nil
	}
	if !errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	week, err = s.store.LatestWeek(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return week, nil
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
