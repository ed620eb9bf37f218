package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"timetable-service/internal/lock"
	"timetable-service/internal/models"
	"timetable-service/pkg/response"
)

// LessonInput carries a create (ID nil) or an edit of one lesson block.
type LessonInput struct {
	ID              *int64
	SectionID       int64
	WeekID          int64
	Weekday         models.Weekday
	StartPeriod     int
	DisciplineID    int64
	DurationPeriods int
	InstructorID    *int64
	Note            string
}

type LessonDetails struct {
	ID              int64
	DisciplineID    int64
	InstructorID    int64
	DurationPeriods int
	Note            *string
}

func (in *LessonInput) normalize() error {
	if in.DurationPeriods == 0 {
		in.DurationPeriods = 1
	}
	in.Note = strings.TrimSpace(in.Note)

	switch {
	case in.ID != nil && *in.ID <= 0:
		return response.Invalid("id", "must be positive")
	case in.SectionID <= 0:
		return response.Invalid("section_id", "is required")
	case in.WeekID <= 0:
		return response.Invalid("week_id", "is required")
	case in.DisciplineID <= 0:
		return response.Invalid("discipline_id", "is required")
	case !in.Weekday.Valid():
		return response.Invalid("weekday", fmt.Sprintf("unknown weekday %q", in.Weekday))
	case in.StartPeriod < 1 || in.StartPeriod > models.PeriodsPerDay:
		return response.Invalid("start_period", fmt.Sprintf("must be between 1 and %d", models.PeriodsPerDay))
	case in.DurationPeriods < 1:
		return response.Invalid("duration_periods", "must be at least 1")
	case in.StartPeriod+in.DurationPeriods-1 > models.PeriodsPerDay:
		return response.Invalid("duration_periods", fmt.Sprintf("lesson would end after period %d", models.PeriodsPerDay))
	}

	return nil
}

func budgetKey(sectionID, disciplineID int64) string {
	return fmt.Sprintf("budget:%d:%d", sectionID, disciplineID)
}

func dayKey(sectionID, weekID int64, day models.Weekday) string {
	return fmt.Sprintf("day:%d:%d:%s", sectionID, weekID, day)
}

// Save creates or edits a lesson block. Validation reads and the write share
// one transaction, serialized per section day and per discipline budget.
func (s *Service) Save(ctx context.Context, in LessonInput, p models.Principal) (*models.LessonBlock, error) {
	const op = "service.Save"

	if err := in.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	keys := []string{
		budgetKey(in.SectionID, in.DisciplineID),
		dayKey(in.SectionID, in.WeekID, in.Weekday),
	}

	release, err := lock.Acquire(ctx, s.locker, keys, s.lockTTL, s.lockWait)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	var saved *models.LessonBlock

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.LockKeys(ctx, keys...); err != nil {
			return err
		}

		if _, err := tx.GetSection(ctx, in.SectionID); err != nil {
			return fmt.Errorf("section %d: %w", in.SectionID, err)
		}
		if _, err := tx.GetWeek(ctx, in.WeekID); err != nil {
			return fmt.Errorf("week %d: %w", in.WeekID, err)
		}

		remaining, err := remainingHours(ctx, tx, in.DisciplineID, in.SectionID, in.ID)
		if err != nil {
			return fmt.Errorf("discipline %d: %w", in.DisciplineID, err)
		}
		if in.DurationPeriods > remaining {
			return &response.CapacityError{Requested: in.DurationPeriods, Remaining: remaining}
		}

		instructorID, err := s.resolveInstructor(ctx, tx, in, p)
		if err != nil {
			return err
		}

		var lesson *models.LessonBlock
		if in.ID == nil {
			status := models.LessonPending
			if p.IsAdminLike() {
				status = models.LessonConfirmed
			}
			lesson = &models.LessonBlock{Status: status}
		} else {
			lesson, err = tx.GetLesson(ctx, *in.ID)
			if err != nil {
				return fmt.Errorf("lesson %d: %w", *in.ID, err)
			}
			if !p.CanEdit(lesson) {
				return response.ErrForbidden
			}
		}

		end := in.StartPeriod + in.DurationPeriods - 1
		clash, err := tx.FindOverlapping(ctx, in.SectionID, in.WeekID, in.Weekday, in.StartPeriod, end, in.ID)
		switch {
		case err == nil:
			return &response.SlotConflictError{LessonID: clash.ID}
		case !errors.Is(err, response.ErrNotFound):
			return err
		}

		lesson.SectionID = in.SectionID
		lesson.WeekID = in.WeekID
		lesson.Weekday = in.Weekday
		lesson.StartPeriod = in.StartPeriod
		lesson.DisciplineID = in.DisciplineID
		lesson.DurationPeriods = in.DurationPeriods
		lesson.InstructorID = instructorID
		lesson.Note = nil
		if in.Note != "" {
			note := in.Note
			lesson.Note = &note
		}

		if in.ID == nil {
			id, err := tx.InsertLesson(ctx, lesson)
			if err != nil {
				return err
			}
			lesson.ID = id
		} else if err := tx.UpdateLesson(ctx, lesson); err != nil {
			return err
		}

		saved = lesson
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("lesson saved",
		slog.Int64("lesson_id", saved.ID),
		slog.Int64("section_id", saved.SectionID),
		slog.Int64("week_id", saved.WeekID),
		slog.String("status", string(saved.Status)),
		slog.Int64("user_id", p.UserID),
	)

	return saved, nil
}

// resolveInstructor pins instructors to themselves; administrators must name one.
func (s *Service) resolveInstructor(ctx context.Context, r Reader, in LessonInput, p models.Principal) (int64, error) {
	if p.IsAdminLike() {
		if in.InstructorID == nil || *in.InstructorID <= 0 {
			return 0, response.Invalid("instructor_id", "administrators must select an instructor")
		}
		if _, err := r.GetInstructor(ctx, *in.InstructorID); err != nil {
			return 0, fmt.Errorf("instructor %d: %w", *in.InstructorID, err)
		}
		return *in.InstructorID, nil
	}

	if p.Role != models.RoleInstructor || p.InstructorID == nil {
		return 0, fmt.Errorf("no instructor profile: %w", response.ErrForbidden)
	}

	return *p.InstructorID, nil
}

func (s *Service) Remove(ctx context.Context, id int64, p models.Principal) error {
	const op = "service.Remove"

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		lesson, err := tx.GetLesson(ctx, id)
		if err != nil {
			return err
		}
		if !p.CanEdit(lesson) {
			return response.ErrForbidden
		}
		return tx.DeleteLesson(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("lesson removed", slog.Int64("lesson_id", id), slog.Int64("user_id", p.UserID))

	return nil
}

// LessonDetails returns the editable fields of a lesson to someone allowed to edit it.
func (s *Service) LessonDetails(ctx context.Context, id int64, p models.Principal) (*LessonDetails, error) {
	const op = "service.LessonDetails"

	lesson, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !p.CanEdit(lesson) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	return &LessonDetails{
		ID:              lesson.ID,
		DisciplineID:    lesson.DisciplineID,
		InstructorID:    lesson.InstructorID,
		DurationPeriods: lesson.DurationPeriods,
		Note:            lesson.Note,
	}, nil
}
