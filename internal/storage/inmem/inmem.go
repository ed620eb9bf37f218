package inmem

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"timetable-service/internal/models"
	"timetable-service/internal/service"
	"timetable-service/pkg/response"
)

// Assignment links a discipline taught in a section to up to two instructors.
type Assignment struct {
	DisciplineID  int64
	SectionID     int64
	InstructorID1 *int64
	InstructorID2 *int64
}

type tables struct {
	sections     map[int64]models.Section
	weeks        map[int64]models.Week
	disciplines  map[int64]models.Discipline
	instructors  map[int64]models.Instructor
	assignments  []Assignment
	lessons      map[int64]models.LessonBlock
	nextLessonID int64
}

// Storage keeps everything in memory. Transactions run one at a time on a
// copy of the lesson table that replaces the original on commit.
type Storage struct {
	mu  sync.RWMutex
	t   *tables
	now func() time.Time
}

var _ service.Store = (*Storage)(nil)

func New() *Storage {
	return &Storage{
		t: &tables{
			sections:    make(map[int64]models.Section),
			weeks:       make(map[int64]models.Week),
			disciplines: make(map[int64]models.Discipline),
			instructors: make(map[int64]models.Instructor),
			lessons:     make(map[int64]models.LessonBlock),
		},
		now: time.Now,
	}
}

func (s *Storage) Close() error {
	return nil
}

// Catalog data owned by other services.

func (s *Storage) AddSection(sec models.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.sections[sec.ID] = sec
}

func (s *Storage) AddWeek(w models.Week) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.weeks[w.ID] = w
}

func (s *Storage) AddDiscipline(d models.Discipline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.disciplines[d.ID] = d
}

func (s *Storage) AddInstructor(i models.Instructor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.instructors[i.ID] = i
}

func (s *Storage) AddAssignment(a Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.assignments = append(s.t.assignments, a)
}

func (s *Storage) RunInTx(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := *s.t
	draft.lessons = maps.Clone(s.t.lessons)

	if err := fn(ctx, &txView{tables: &draft, now: s.now}); err != nil {
		return err
	}

	s.t = &draft
	return nil
}

func (s *Storage) GetSection(ctx context.Context, id int64) (*models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.GetSection(ctx, id)
}

func (s *Storage) GetWeek(ctx context.Context, id int64) (*models.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.GetWeek(ctx, id)
}

func (s *Storage) FindWeekContaining(ctx context.Context, cycleID int64, day time.Time) (*models.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.FindWeekContaining(ctx, cycleID, day)
}

func (s *Storage) LatestWeek(ctx context.Context, cycleID int64) (*models.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.LatestWeek(ctx, cycleID)
}

func (s *Storage) GetDiscipline(ctx context.Context, id int64) (*models.Discipline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.GetDiscipline(ctx, id)
}

func (s *Storage) ListDisciplinesByCycle(ctx context.Context, cycleID int64) ([]*models.Discipline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.ListDisciplinesByCycle(ctx, cycleID)
}

func (s *Storage) ListAssignedDisciplines(ctx context.Context, sectionID, cycleID, instructorID int64) ([]*models.Discipline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.ListAssignedDisciplines(ctx, sectionID, cycleID, instructorID)
}

func (s *Storage) GetInstructor(ctx context.Context, id int64) (*models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.GetInstructor(ctx, id)
}

func (s *Storage) ListInstructors(ctx context.Context) ([]*models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.ListInstructors(ctx)
}

func (s *Storage) GetLesson(ctx context.Context, id int64) (*models.LessonBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.GetLesson(ctx, id)
}

func (s *Storage) ListLessonViews(ctx context.Context, sectionID, weekID int64) ([]*models.LessonView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.ListLessonViews(ctx, sectionID, weekID)
}

func (s *Storage) ListPendingLessons(ctx context.Context) ([]*models.LessonView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.ListPendingLessons(ctx)
}

func (s *Storage) ScheduledHours(ctx context.Context, disciplineID, sectionID int64, excludeID *int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.ScheduledHours(ctx, disciplineID, sectionID, excludeID)
}

func (s *Storage) FindOverlapping(ctx context.Context, sectionID, weekID int64, day models.Weekday, start, end int, excludeID *int64) (*models.LessonBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.FindOverlapping(ctx, sectionID, weekID, day, start, end, excludeID)
}

// reads on tables assume the caller holds the storage lock

func (t *tables) GetSection(_ context.Context, id int64) (*models.Section, error) {
	sec, ok := t.sections[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &sec, nil
}

func (t *tables) GetWeek(_ context.Context, id int64) (*models.Week, error) {
	w, ok := t.weeks[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &w, nil
}

func (t *tables) cycleWeeks(cycleID int64) []models.Week {
	var weeks []models.Week
	for _, w := range t.weeks {
		if w.CycleID == cycleID {
			weeks = append(weeks, w)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].StartDate.Before(weeks[j].StartDate) })
	return weeks
}

func (t *tables) FindWeekContaining(_ context.Context, cycleID int64, day time.Time) (*models.Week, error) {
	for _, w := range t.cycleWeeks(cycleID) {
		if w.Contains(day) {
			return &w, nil
		}
	}
	return nil, response.ErrNotFound
}

func (t *tables) LatestWeek(_ context.Context, cycleID int64) (*models.Week, error) {
	weeks := t.cycleWeeks(cycleID)
	if len(weeks) == 0 {
		return nil, response.ErrNotFound
	}
	w := weeks[len(weeks)-1]
	return &w, nil
}

func (t *tables) GetDiscipline(_ context.Context, id int64) (*models.Discipline, error) {
	d, ok := t.disciplines[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &d, nil
}

func (t *tables) ListDisciplinesByCycle(_ context.Context, cycleID int64) ([]*models.Discipline, error) {
	var out []*models.Discipline
	for _, d := range t.disciplines {
		if d.CycleID == cycleID {
			out = append(out, &d)
		}
	}
	sortDisciplines(out)
	return out, nil
}

func (t *tables) ListAssignedDisciplines(_ context.Context, sectionID, cycleID, instructorID int64) ([]*models.Discipline, error) {
	var out []*models.Discipline
	seen := make(map[int64]bool)
	for _, a := range t.assignments {
		if a.SectionID != sectionID || seen[a.DisciplineID] {
			continue
		}
		if !sameID(a.InstructorID1, instructorID) && !sameID(a.InstructorID2, instructorID) {
			continue
		}
		d, ok := t.disciplines[a.DisciplineID]
		if !ok || d.CycleID != cycleID {
			continue
		}
		seen[a.DisciplineID] = true
		out = append(out, &d)
	}
	sortDisciplines(out)
	return out, nil
}

func (t *tables) GetInstructor(_ context.Context, id int64) (*models.Instructor, error) {
	i, ok := t.instructors[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &i, nil
}

func (t *tables) ListInstructors(_ context.Context) ([]*models.Instructor, error) {
	out := make([]*models.Instructor, 0, len(t.instructors))
	for _, i := range t.instructors {
		out = append(out, &i)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].DisplayName != out[b].DisplayName {
			return out[a].DisplayName < out[b].DisplayName
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (t *tables) GetLesson(_ context.Context, id int64) (*models.LessonBlock, error) {
	l, ok := t.lessons[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &l, nil
}

func (t *tables) view(l models.LessonBlock) *models.LessonView {
	v := &models.LessonView{LessonBlock: l}
	if d, ok := t.disciplines[l.DisciplineID]; ok {
		v.DisciplineName = d.Name
	}
	if i, ok := t.instructors[l.InstructorID]; ok {
		v.InstructorName = i.DisplayName
	}
	if sec, ok := t.sections[l.SectionID]; ok {
		v.SectionName = sec.Name
	}
	if w, ok := t.weeks[l.WeekID]; ok {
		v.WeekName = w.Name
		v.WeekStart = w.StartDate
		v.WeekEnd = w.EndDate
	}
	return v
}

func (t *tables) ListLessonViews(_ context.Context, sectionID, weekID int64) ([]*models.LessonView, error) {
	var out []*models.LessonView
	for _, l := range t.lessons {
		if l.SectionID == sectionID && l.WeekID == weekID {
			out = append(out, t.view(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tables) ListPendingLessons(_ context.Context) ([]*models.LessonView, error) {
	var out []*models.LessonView
	for _, l := range t.lessons {
		if l.Status == models.LessonPending {
			out = append(out, t.view(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *tables) ScheduledHours(_ context.Context, disciplineID, sectionID int64, excludeID *int64) (int, error) {
	total := 0
	for _, l := range t.lessons {
		if l.DisciplineID != disciplineID || l.SectionID != sectionID {
			continue
		}
		if excludeID != nil && l.ID == *excludeID {
			continue
		}
		if l.Status == models.LessonPending || l.Status == models.LessonConfirmed {
			total += l.DurationPeriods
		}
	}
	return total, nil
}

func (t *tables) FindOverlapping(_ context.Context, sectionID, weekID int64, day models.Weekday, start, end int, excludeID *int64) (*models.LessonBlock, error) {
	var found *models.LessonBlock
	for _, l := range t.lessons {
		if l.SectionID != sectionID || l.WeekID != weekID {
			continue
		}
		if excludeID != nil && l.ID == *excludeID {
			continue
		}
		if l.Overlaps(day, start, end) && (found == nil || l.ID < found.ID) {
			found = &l
		}
	}
	if found == nil {
		return nil, response.ErrNotFound
	}
	return found, nil
}

type txView struct {
	*tables
	now func() time.Time
}

func (tx *txView) LockKeys(context.Context, ...string) error {
	return nil
}

// checkStartSlot mirrors the unique (section, week, weekday, start_period) index.
func (tx *txView) checkStartSlot(l *models.LessonBlock) error {
	for _, other := range tx.lessons {
		if other.ID == l.ID {
			continue
		}
		if other.SectionID == l.SectionID && other.WeekID == l.WeekID &&
			other.Weekday == l.Weekday && other.StartPeriod == l.StartPeriod {
			return &response.SlotConflictError{LessonID: other.ID}
		}
	}
	return nil
}

func (tx *txView) InsertLesson(_ context.Context, l *models.LessonBlock) (int64, error) {
	if err := tx.checkStartSlot(l); err != nil {
		return 0, err
	}

	tx.nextLessonID++
	row := *l
	row.ID = tx.nextLessonID
	row.CreatedAt = tx.now().UTC()
	row.UpdatedAt = row.CreatedAt
	tx.lessons[row.ID] = row

	return row.ID, nil
}

func (tx *txView) UpdateLesson(_ context.Context, l *models.LessonBlock) error {
	orig, ok := tx.lessons[l.ID]
	if !ok {
		return response.ErrNotFound
	}
	if err := tx.checkStartSlot(l); err != nil {
		return err
	}

	row := *l
	row.Status = orig.Status
	row.CreatedAt = orig.CreatedAt
	row.UpdatedAt = tx.now().UTC()
	tx.lessons[l.ID] = row

	return nil
}

func (tx *txView) SetLessonStatus(_ context.Context, id int64, status models.LessonStatus) error {
	row, ok := tx.lessons[id]
	if !ok {
		return response.ErrNotFound
	}
	row.Status = status
	row.UpdatedAt = tx.now().UTC()
	tx.lessons[id] = row
	return nil
}

func (tx *txView) DeleteLesson(_ context.Context, id int64) error {
	if _, ok := tx.lessons[id]; !ok {
		return response.ErrNotFound
	}
	delete(tx.lessons, id)
	return nil
}

func sortDisciplines(ds []*models.Discipline) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Name != ds[j].Name {
			return ds[i].Name < ds[j].Name
		}
		return ds[i].ID < ds[j].ID
	})
}

func sameID(p *int64, id int64) bool {
	return p != nil && *p == id
}
