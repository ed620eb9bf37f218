package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"timetable-service/internal/lock"
	"timetable-service/internal/models"
	"timetable-service/internal/service"
	"timetable-service/internal/storage/inmem"
	"timetable-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sectionA    int64 = 1
	sectionB    int64 = 2
	week10      int64 = 10
	week11      int64 = 11
	cycle       int64 = 100
	tactics     int64 = 20
	navigation  int64 = 21
	otherCycle  int64 = 22
	instructorX int64 = 7
	instructorY int64 = 8
)

var (
	admin   = models.Principal{UserID: 1, Role: models.RoleAdministrator}
	student = models.Principal{UserID: 90, Role: models.RoleStudent}
	instrX  = instructor(70, instructorX)
	instrY  = instructor(80, instructorY)
)

func instructor(userID, id int64) models.Principal {
	return models.Principal{UserID: userID, Role: models.RoleInstructor, InstructorID: &id}
}

func ptr[T any](v T) *T {
	return &v
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T, now time.Time) (*service.Service, *inmem.Storage) {
	t.Helper()

	store := inmem.New()
	store.AddSection(models.Section{ID: sectionA, Name: "1st Platoon", SchoolID: 1})
	store.AddSection(models.Section{ID: sectionB, Name: "2nd Platoon", SchoolID: 1})
	store.AddWeek(models.Week{ID: week10, Name: "Week 10", CycleID: cycle, StartDate: day(2025, 3, 10), EndDate: day(2025, 3, 16)})
	store.AddWeek(models.Week{ID: week11, Name: "Week 11", CycleID: cycle, StartDate: day(2025, 3, 17), EndDate: day(2025, 3, 23)})
	store.AddDiscipline(models.Discipline{ID: tactics, Name: "Tactics", PlannedHours: 10, SchoolID: 1, CycleID: cycle})
	store.AddDiscipline(models.Discipline{ID: navigation, Name: "Navigation", PlannedHours: 4, SchoolID: 1, CycleID: cycle})
	store.AddDiscipline(models.Discipline{ID: otherCycle, Name: "Archery", PlannedHours: 8, SchoolID: 1, CycleID: 200})
	store.AddInstructor(models.Instructor{ID: instructorX, UserID: 70, DisplayName: "Sgt. Xavier"})
	store.AddInstructor(models.Instructor{ID: instructorY, UserID: 80, DisplayName: "Lt. Yara"})
	store.AddAssignment(inmem.Assignment{DisciplineID: tactics, SectionID: sectionA, InstructorID1: ptr(instructorX)})
	store.AddAssignment(inmem.Assignment{DisciplineID: navigation, SectionID: sectionA, InstructorID2: ptr(instructorY)})

	svc := service.NewService(store, lock.NewLocalLock(),
		service.WithClock(func() time.Time { return now }),
		service.WithLockTiming(time.Second, 2*time.Second),
	)

	return svc, store
}

func lessonInput(discipline int64, weekday models.Weekday, start, duration int) service.LessonInput {
	return service.LessonInput{
		SectionID:       sectionA,
		WeekID:          week10,
		Weekday:         weekday,
		StartPeriod:     start,
		DisciplineID:    discipline,
		DurationPeriods: duration,
	}
}

func asAdmin(in service.LessonInput, instructorID int64) service.LessonInput {
	in.InstructorID = &instructorID
	return in
}

func TestSaveRespectsCurriculumBudget(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	_, err := svc.Save(ctx, asAdmin(lessonInput(tactics, models.Monday, 1, 6), instructorX), admin)
	require.NoError(t, err)

	remaining, err := svc.RemainingHours(ctx, tactics, sectionA, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)

	_, err = svc.Save(ctx, asAdmin(lessonInput(tactics, models.Tuesday, 1, 5), instructorX), admin)
	var capErr *response.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1, capErr.Deficit())
	assert.ErrorIs(t, err, response.ErrCapacityExceeded)

	_, err = svc.Save(ctx, asAdmin(lessonInput(tactics, models.Wednesday, 1, 4), instructorX), admin)
	require.NoError(t, err)

	remaining, err = svc.RemainingHours(ctx, tactics, sectionA, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	// the budget is per section
	remaining, err = svc.RemainingHours(ctx, tactics, sectionB, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestSaveEditExcludesItselfFromBudget(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	lesson, err := svc.Save(ctx, asAdmin(lessonInput(tactics, models.Monday, 1, 6), instructorX), admin)
	require.NoError(t, err)

	edit := asAdmin(lessonInput(tactics, models.Monday, 1, 10), instructorX)
	edit.ID = &lesson.ID
	updated, err := svc.Save(ctx, edit, admin)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.DurationPeriods)

	remaining, err := svc.RemainingHours(ctx, tactics, sectionA, &lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestInstructorRequestNeedsApproval(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	in := lessonInput(tactics, models.Monday, 1, 2)
	in.InstructorID = ptr(instructorY)
	lesson, err := svc.Save(ctx, in, instrX)
	require.NoError(t, err)
	assert.Equal(t, models.LessonPending, lesson.Status)
	assert.Equal(t, instructorX, lesson.InstructorID, "instructors always schedule themselves")

	edit := lessonInput(tactics, models.Monday, 1, 3)
	edit.ID = &lesson.ID
	_, err = svc.Save(ctx, edit, instrY)
	assert.ErrorIs(t, err, response.ErrForbidden)

	edited, err := svc.Save(ctx, asAdmin(edit, instructorX), admin)
	require.NoError(t, err)
	assert.Equal(t, models.LessonPending, edited.Status)
	assert.Equal(t, 3, edited.DurationPeriods)
}

func TestAdministratorLessonIsConfirmedAndVisible(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	lesson, err := svc.Save(ctx, asAdmin(lessonInput(tactics, models.Friday, 4, 2), instructorY), admin)
	require.NoError(t, err)
	assert.Equal(t, models.LessonConfirmed, lesson.Status)

	grid, err := svc.BuildGrid(ctx, sectionA, week10, student)
	require.NoError(t, err)

	cell := grid.Cells[3][models.Friday.Index()]
	assert.Equal(t, models.CellLesson, cell.Kind)
	assert.Equal(t, "Tactics", cell.Discipline)
	assert.Equal(t, "Lt. Yara", cell.Instructor)
	assert.False(t, cell.CanEdit)
	assert.Equal(t, models.CellSkip, grid.Cells[4][models.Friday.Index()].Kind)
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	tests := []struct {
		name    string
		in      service.LessonInput
		p       models.Principal
		wantErr error
	}{
		{
			name:    "unknown weekday",
			in:      asAdmin(lessonInput(tactics, models.Weekday("funday"), 1, 1), instructorX),
			p:       admin,
			wantErr: response.ErrInvalidInput,
		},
		{
			name:    "past last period",
			in:      asAdmin(lessonInput(tactics, models.Monday, 14, 3), instructorX),
			p:       admin,
			wantErr: response.ErrInvalidInput,
		},
		{
			name:    "period zero",
			in:      asAdmin(lessonInput(tactics, models.Monday, 0, 1), instructorX),
			p:       admin,
			wantErr: response.ErrInvalidInput,
		},
		{
			name:    "administrator without instructor",
			in:      lessonInput(tactics, models.Monday, 1, 1),
			p:       admin,
			wantErr: response.ErrInvalidInput,
		},
		{
			name:    "unknown instructor",
			in:      asAdmin(lessonInput(tactics, models.Monday, 1, 1), 999),
			p:       admin,
			wantErr: response.ErrNotFound,
		},
		{
			name:    "unknown section",
			in:      service.LessonInput{SectionID: 99, WeekID: week10, Weekday: models.Monday, StartPeriod: 1, DisciplineID: tactics},
			p:       instrX,
			wantErr: response.ErrNotFound,
		},
		{
			name:    "unknown discipline",
			in:      lessonInput(404, models.Monday, 1, 1),
			p:       instrX,
			wantErr: response.ErrNotFound,
		},
		{
			name:    "student",
			in:      lessonInput(tactics, models.Monday, 1, 1),
			p:       student,
			wantErr: response.ErrForbidden,
		},
		{
			name:    "instructor role without profile",
			in:      lessonInput(tactics, models.Monday, 1, 1),
			p:       models.Principal{UserID: 5, Role: models.RoleInstructor},
			wantErr: response.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tt.in, tt.p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveDefaultsDurationToOnePeriod(t *testing.T) {
	svc, _ := setup(t, day(2025, 3, 12))

	lesson, err := svc.Save(context.Background(), lessonInput(tactics, models.Monday, 15, 0), instrX)
	require.NoError(t, err)
	assert.Equal(t, 1, lesson.DurationPeriods)
	assert.Equal(t, 15, lesson.EndPeriod())
}

func TestSaveRejectsOverlappingBlocks(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	first, err := svc.Save(ctx, asAdmin(lessonInput(tactics, models.Monday, 2, 3), instructorX), admin)
	require.NoError(t, err)

	_, err = svc.Save(ctx, asAdmin(lessonInput(navigation, models.Monday, 4, 1), instructorY), admin)
	var conflict *response.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.LessonID)

	_, err = svc.Save(ctx, asAdmin(lessonInput(navigation, models.Monday, 1, 2), instructorY), admin)
	assert.ErrorIs(t, err, response.ErrSlotConflict)

	_, err = svc.Save(ctx, asAdmin(lessonInput(navigation, models.Monday, 5, 1), instructorY), admin)
	require.NoError(t, err)

	// other weeks and sections are independent
	other := asAdmin(lessonInput(navigation, models.Monday, 2, 1), instructorY)
	other.WeekID = week11
	_, err = svc.Save(ctx, other, admin)
	require.NoError(t, err)

	// moving a block over its own old span is fine
	move := asAdmin(lessonInput(tactics, models.Monday, 1, 3), instructorX)
	move.ID = &first.ID
	_, err = svc.Save(ctx, move, admin)
	require.NoError(t, err)
}

func TestConcurrentSavesOnSameSlot(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, day(2025, 3, 12))

	const workers = 2

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Save(ctx, asAdmin(lessonInput(tactics, models.Thursday, 3, 2), instructorX), admin)
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, response.ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	lessons, err := store.ListLessonViews(ctx, sectionA, week10)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestConcurrentSavesRespectBudget(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, day(2025, 3, 12))

	days := []models.Weekday{models.Monday, models.Tuesday, models.Wednesday}

	var wg sync.WaitGroup
	errs := make([]error, len(days))
	for i, d := range days {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Save(ctx, asAdmin(lessonInput(navigation, d, 1, 3), instructorY), admin)
		}()
	}
	wg.Wait()

	var ok, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, response.ErrCapacityExceeded):
			exceeded++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 2, exceeded)

	remaining, err := svc.RemainingHours(ctx, navigation, sectionA, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestSaveReturnsLockedWhenKeysAreHeld(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	locker := lock.NewLocalLock()
	svc := service.NewService(store, locker, service.WithLockTiming(time.Minute, 50*time.Millisecond))

	ok, err := locker.Lock(ctx, "budget:1:20", "other-request", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Save(ctx, asAdmin(lessonInput(tactics, models.Monday, 1, 1), instructorX), admin)
	assert.ErrorIs(t, err, response.ErrLocked)
}
