package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timetable-service/internal/models"
	"timetable-service/pkg/response"
)

const (
	weekColumns = `id, name, cycle_id, start_date, end_date,
		show_period_13, show_period_14, show_period_15,
		show_saturday, saturday_periods, show_sunday, sunday_periods`

	disciplineColumns = `id, name, planned_hours, school_id, cycle_id`

	lessonColumns = `id, section_id, week_id, weekday, start_period, duration_periods,
		discipline_id, instructor_id, status, note, created_at, updated_at`

	lessonViewQuery = `
		SELECT l.id, l.section_id, l.week_id, l.weekday, l.start_period, l.duration_periods,
			l.discipline_id, l.instructor_id, l.status, l.note, l.created_at, l.updated_at,
			d.name, COALESCE(i.display_name, ''), s.name, w.name, w.start_date, w.end_date
		FROM lesson_blocks l
		JOIN disciplines d ON d.id = l.discipline_id
		JOIN sections s ON s.id = l.section_id
		JOIN weeks w ON w.id = l.week_id
		LEFT JOIN instructors i ON i.id = l.instructor_id`
)

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return response.ErrNotFound
	}
	return err
}

func (q queries) GetSection(ctx context.Context, id int64) (*models.Section, error) {
	const op = "storage.postgres.GetSection"

	var sec models.Section
	err := q.q.QueryRowContext(ctx, `SELECT id, name, school_id FROM sections WHERE id=$1`, id).
		Scan(&sec.ID, &sec.Name, &sec.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &sec, nil
}

func scanWeek(row scanner) (*models.Week, error) {
	var w models.Week
	err := row.Scan(
		&w.ID,
		&w.Name,
		&w.CycleID,
		&w.StartDate,
		&w.EndDate,
		&w.Display.ShowPeriod13,
		&w.Display.ShowPeriod14,
		&w.Display.ShowPeriod15,
		&w.Display.ShowSaturday,
		&w.Display.SaturdayPeriods,
		&w.Display.ShowSunday,
		&w.Display.SundayPeriods,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (q queries) GetWeek(ctx context.Context, id int64) (*models.Week, error) {
	const op = "storage.postgres.GetWeek"

	w, err := scanWeek(q.q.QueryRowContext(ctx, `SELECT `+weekColumns+` FROM weeks WHERE id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return w, nil
}

func (q queries) FindWeekContaining(ctx context.Context, cycleID int64, day time.Time) (*models.Week, error) {
	const op = "storage.postgres.FindWeekContaining"

	w, err := scanWeek(q.q.QueryRowContext(ctx,
		`SELECT `+weekColumns+` FROM weeks
		WHERE cycle_id=$1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date
		LIMIT 1`, cycleID, day))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return w, nil
}

func (q queries) LatestWeek(ctx context.Context, cycleID int64) (*models.Week, error) {
	const op = "storage.postgres.LatestWeek"

	w, err := scanWeek(q.q.QueryRowContext(ctx,
		`SELECT `+weekColumns+` FROM weeks WHERE cycle_id=$1 ORDER BY start_date DESC LIMIT 1`, cycleID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return w, nil
}

func scanDiscipline(row scanner) (*models.Discipline, error) {
	var d models.Discipline
	if err := row.Scan(&d.ID, &d.Name, &d.PlannedHours, &d.SchoolID, &d.CycleID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (q queries) GetDiscipline(ctx context.Context, id int64) (*models.Discipline, error) {
	const op = "storage.postgres.GetDiscipline"

	d, err := scanDiscipline(q.q.QueryRowContext(ctx, `SELECT `+disciplineColumns+` FROM disciplines WHERE id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return d, nil
}

func (q queries) listDisciplines(ctx context.Context, op, query string, args ...any) ([]*models.Discipline, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var out []*models.Discipline
	for rows.Next() {
		d, err := scanDiscipline(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (q queries) ListDisciplinesByCycle(ctx context.Context, cycleID int64) ([]*models.Discipline, error) {
	return q.listDisciplines(ctx, "storage.postgres.ListDisciplinesByCycle",
		`SELECT `+disciplineColumns+` FROM disciplines WHERE cycle_id=$1 ORDER BY name, id`, cycleID)
}

func (q queries) ListAssignedDisciplines(ctx context.Context, sectionID, cycleID, instructorID int64) ([]*models.Discipline, error) {
	return q.listDisciplines(ctx, "storage.postgres.ListAssignedDisciplines",
		`SELECT DISTINCT d.id, d.name, d.planned_hours, d.school_id, d.cycle_id
		FROM disciplines d
		JOIN discipline_sections ds ON ds.discipline_id = d.id
		WHERE ds.section_id=$1
			AND d.cycle_id=$2
			AND (ds.instructor_id_1=$3 OR ds.instructor_id_2=$3)
		ORDER BY d.name, d.id`, sectionID, cycleID, instructorID)
}

func (q queries) GetInstructor(ctx context.Context, id int64) (*models.Instructor, error) {
	const op = "storage.postgres.GetInstructor"

	var i models.Instructor
	err := q.q.QueryRowContext(ctx, `SELECT id, user_id, display_name FROM instructors WHERE id=$1`, id).
		Scan(&i.ID, &i.UserID, &i.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &i, nil
}

func (q queries) ListInstructors(ctx context.Context) ([]*models.Instructor, error) {
	const op = "storage.postgres.ListInstructors"

	rows, err := q.q.QueryContext(ctx, `SELECT id, user_id, display_name FROM instructors ORDER BY display_name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var out []*models.Instructor
	for rows.Next() {
		var i models.Instructor
		if err := rows.Scan(&i.ID, &i.UserID, &i.DisplayName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, &i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func lessonDest(l *models.LessonBlock) []any {
	return []any{
		&l.ID,
		&l.SectionID,
		&l.WeekID,
		&l.Weekday,
		&l.StartPeriod,
		&l.DurationPeriods,
		&l.DisciplineID,
		&l.InstructorID,
		&l.Status,
		&l.Note,
		&l.CreatedAt,
		&l.UpdatedAt,
	}
}

func (q queries) GetLesson(ctx context.Context, id int64) (*models.LessonBlock, error) {
	const op = "storage.postgres.GetLesson"

	query := `SELECT ` + lessonColumns + ` FROM lesson_blocks WHERE id=$1`
	if q.forUpdate {
		query += ` FOR UPDATE`
	}

	var l models.LessonBlock
	if err := q.q.QueryRowContext(ctx, query, id).Scan(lessonDest(&l)...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &l, nil
}

func (q queries) listLessonViews(ctx context.Context, op, query string, args ...any) ([]*models.LessonView, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var out []*models.LessonView
	for rows.Next() {
		var v models.LessonView
		dest := append(lessonDest(&v.LessonBlock),
			&v.DisciplineName,
			&v.InstructorName,
			&v.SectionName,
			&v.WeekName,
			&v.WeekStart,
			&v.WeekEnd,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (q queries) ListLessonViews(ctx context.Context, sectionID, weekID int64) ([]*models.LessonView, error) {
	return q.listLessonViews(ctx, "storage.postgres.ListLessonViews",
		lessonViewQuery+` WHERE l.section_id=$1 AND l.week_id=$2 ORDER BY l.id`, sectionID, weekID)
}

func (q queries) ListPendingLessons(ctx context.Context) ([]*models.LessonView, error) {
	return q.listLessonViews(ctx, "storage.postgres.ListPendingLessons",
		lessonViewQuery+` WHERE l.status=$1 ORDER BY l.id DESC`, string(models.LessonPending))
}

func (q queries) ScheduledHours(ctx context.Context, disciplineID, sectionID int64, excludeID *int64) (int, error) {
	const op = "storage.postgres.ScheduledHours"

	var total int
	err := q.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_periods), 0)
		FROM lesson_blocks
		WHERE discipline_id=$1
			AND section_id=$2
			AND status IN ('pending', 'confirmed')
			AND ($3::bigint IS NULL OR id <> $3)`,
		disciplineID, sectionID, excludeID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

func (q queries) FindOverlapping(ctx context.Context, sectionID, weekID int64, day models.Weekday, start, end int, excludeID *int64) (*models.LessonBlock, error) {
	const op = "storage.postgres.FindOverlapping"

	var l models.LessonBlock
	err := q.q.QueryRowContext(ctx,
		`SELECT `+lessonColumns+`
		FROM lesson_blocks
		WHERE section_id=$1
			AND week_id=$2
			AND weekday=$3
			AND start_period <= $5
			AND start_period + duration_periods - 1 >= $4
			AND ($6::bigint IS NULL OR id <> $6)
		ORDER BY id
		LIMIT 1`,
		sectionID, weekID, string(day), start, end, excludeID,
	).Scan(lessonDest(&l)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &l, nil
}
