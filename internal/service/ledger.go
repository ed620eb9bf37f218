package service

import (
	"context"
	"fmt"
)

// RemainingHours is the discipline's planned hours minus what is already
// scheduled for the section. It can be negative for legacy data.
func (s *Service) RemainingHours(ctx context.Context, disciplineID, sectionID int64, excludeID *int64) (int, error) {
	const op = "service.RemainingHours"

	remaining, err := remainingHours(ctx, s.store, disciplineID, sectionID, excludeID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return remaining, nil
}

func remainingHours(ctx context.Context, r Reader, disciplineID, sectionID int64, excludeID *int64) (int, error) {
	discipline, err := r.GetDiscipline(ctx, disciplineID)
	if err != nil {
		return 0, err
	}

	scheduled, err := r.ScheduledHours(ctx, disciplineID, sectionID, excludeID)
	if err != nil {
		return 0, err
	}

	return discipline.PlannedHours - scheduled, nil
}
