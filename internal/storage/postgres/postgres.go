package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"timetable-service/internal/models"
	"timetable-service/internal/service"
	"timetable-service/pkg/response"

	"github.com/lib/pq"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every statement; it runs on the pool or inside a transaction.
type queries struct {
	q         querier
	forUpdate bool
}

type Storage struct {
	db *sql.DB
	queries
}

var _ service.Store = (*Storage)(nil)

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithDB(db), nil
}

func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db, queries: queries{q: db}}
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) RunInTx(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	const op = "storage.postgres.RunInTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &txStore{queries{q: tx, forUpdate: true}}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, mapError(err))
	}

	return nil
}

type txStore struct {
	queries
}

// LockKeys takes transaction-scoped advisory locks, released on commit or rollback.
func (t *txStore) LockKeys(ctx context.Context, keys ...string) error {
	const op = "storage.postgres.LockKeys"

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	for _, key := range sorted {
		if _, err := t.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (t *txStore) InsertLesson(ctx context.Context, l *models.LessonBlock) (int64, error) {
	const op = "storage.postgres.InsertLesson"

	var id int64
	err := t.q.QueryRowContext(ctx,
		`INSERT INTO lesson_blocks
		(section_id, week_id, weekday, start_period, duration_periods, discipline_id, instructor_id, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		l.SectionID,
		l.WeekID,
		string(l.Weekday),
		l.StartPeriod,
		l.DurationPeriods,
		l.DisciplineID,
		l.InstructorID,
		string(l.Status),
		l.Note,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}

	return id, nil
}

func (t *txStore) UpdateLesson(ctx context.Context, l *models.LessonBlock) error {
	const op = "storage.postgres.UpdateLesson"

	res, err := t.q.ExecContext(ctx,
		`UPDATE lesson_blocks
		SET section_id=$1, week_id=$2, weekday=$3, start_period=$4, duration_periods=$5,
			discipline_id=$6, instructor_id=$7, note=$8, updated_at=now()
		WHERE id=$9`,
		l.SectionID,
		l.WeekID,
		string(l.Weekday),
		l.StartPeriod,
		l.DurationPeriods,
		l.DisciplineID,
		l.InstructorID,
		l.Note,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	return expectOneRow(op, res)
}

func (t *txStore) SetLessonStatus(ctx context.Context, id int64, status models.LessonStatus) error {
	const op = "storage.postgres.SetLessonStatus"

	res, err := t.q.ExecContext(ctx, `UPDATE lesson_blocks SET status=$1, updated_at=now() WHERE id=$2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectOneRow(op, res)
}

func (t *txStore) DeleteLesson(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteLesson"

	res, err := t.q.ExecContext(ctx, `DELETE FROM lesson_blocks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectOneRow(op, res)
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return nil
}

// mapError turns constraint violations into domain errors.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505":
		return &response.SlotConflictError{}
	case "23503":
		return response.ErrNotFound
	case "23514":
		return response.Invalid(pqErr.Constraint, pqErr.Message)
	}

	return err
}
