package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"timetable-service/internal/lock"
	"timetable-service/internal/models"
)

// Reader is the read side shared by the store and its transactions.
type Reader interface {
	GetSection(ctx context.Context, id int64) (*models.Section, error)
	GetWeek(ctx context.Context, id int64) (*models.Week, error)
	FindWeekContaining(ctx context.Context, cycleID int64, day time.Time) (*models.Week, error)
	LatestWeek(ctx context.Context, cycleID int64) (*models.Week, error)

	GetDiscipline(ctx context.Context, id int64) (*models.Discipline, error)
	ListDisciplinesByCycle(ctx context.Context, cycleID int64) ([]*models.Discipline, error)
	ListAssignedDisciplines(ctx context.Context, sectionID, cycleID, instructorID int64) ([]*models.Discipline, error)

	GetInstructor(ctx context.Context, id int64) (*models.Instructor, error)
	ListInstructors(ctx context.Context) ([]*models.Instructor, error)

	GetLesson(ctx context.Context, id int64) (*models.LessonBlock, error)
	ListLessonViews(ctx context.Context, sectionID, weekID int64) ([]*models.LessonView, error)
	ListPendingLessons(ctx context.Context) ([]*models.LessonView, error)
	// ScheduledHours sums the durations of pending and confirmed lessons.
	ScheduledHours(ctx context.Context, disciplineID, sectionID int64, excludeID *int64) (int, error)
	// FindOverlapping returns a lesson of the same section, week and day whose
	// span intersects [start, end], or response.ErrNotFound.
	FindOverlapping(ctx context.Context, sectionID, weekID int64, day models.Weekday, start, end int, excludeID *int64) (*models.LessonBlock, error)
}

type Tx interface {
	Reader

	// LockKeys serializes transactions touching the same keys until commit.
	LockKeys(ctx context.Context, keys ...string) error
	InsertLesson(ctx context.Context, lesson *models.LessonBlock) (int64, error)
	UpdateLesson(ctx context.Context, lesson *models.LessonBlock) error
	SetLessonStatus(ctx context.Context, id int64, status models.LessonStatus) error
	DeleteLesson(ctx context.Context, id int64) error
}

type Store interface {
	Reader
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Service struct {
	store  Store
	locker lock.Locker
	log    *slog.Logger

	lockTTL  time.Duration
	lockWait time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithLockTiming(ttl, wait time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
		if wait > 0 {
			s.lockWait = wait
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		store:    store,
		locker:   locker,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		lockTTL:  10 * time.Second,
		lockWait: 3 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
