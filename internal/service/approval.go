package service

import (
	"context"
	"fmt"
	"log/slog"

	"timetable-service/internal/models"
	"timetable-service/pkg/response"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type Decision struct {
	LessonID int64
	Action   Action
	// Status is empty when the lesson was deleted.
	Status  models.LessonStatus
	Changed bool
	Message string
}

func (s *Service) ListPending(ctx context.Context, p models.Principal) ([]*models.LessonView, error) {
	const op = "service.ListPending"

	if !p.IsAdminLike() {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	lessons, err := s.store.ListPendingLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lessons, nil
}

// Decide approves a pending lesson in place or rejects it by deleting it.
// Approving a confirmed lesson changes nothing.
func (s *Service) Decide(ctx context.Context, id int64, action Action, p models.Principal) (*Decision, error) {
	const op = "service.Decide"

	if !p.IsAdminLike() {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	var decision *Decision

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		lesson, err := tx.GetLesson(ctx, id)
		if err != nil {
			return err
		}

		name := models.UnknownName
		if d, err := tx.GetDiscipline(ctx, lesson.DisciplineID); err == nil {
			name = d.Name
		}

		switch action {
		case ActionApprove:
			if lesson.Status == models.LessonConfirmed {
				decision = &Decision{
					LessonID: id,
					Action:   action,
					Status:   models.LessonConfirmed,
					Message:  fmt.Sprintf("Lesson of %s was already approved.", name),
				}
				return nil
			}
			if err := tx.SetLessonStatus(ctx, id, models.LessonConfirmed); err != nil {
				return err
			}
			decision = &Decision{
				LessonID: id,
				Action:   action,
				Status:   models.LessonConfirmed,
				Changed:  true,
				Message:  fmt.Sprintf("Lesson of %s approved.", name),
			}
		case ActionReject:
			if lesson.Status != models.LessonPending {
				return response.Invalid("action", "only pending lessons can be rejected")
			}
			if err := tx.DeleteLesson(ctx, id); err != nil {
				return err
			}
			decision = &Decision{
				LessonID: id,
				Action:   action,
				Changed:  true,
				Message:  fmt.Sprintf("Lesson request of %s was rejected and removed.", name),
			}
		default:
			return response.Invalid("action", fmt.Sprintf("unknown action %q", action))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if decision.Changed {
		s.log.Info("lesson decided",
			slog.Int64("lesson_id", id),
			slog.String("action", string(action)),
			slog.Int64("user_id", p.UserID),
		)
	}

	return decision, nil
}
