package postgres

import (
	"context"
	"fmt"
)

// schema lists the tables the scheduler reads and writes. Catalog tables are
// shared with the administration services and only created when missing.
var schema = []string{
	`
	CREATE TABLE IF NOT EXISTS sections (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		school_id BIGINT NOT NULL,
		CONSTRAINT sections_school_name_key UNIQUE (school_id, name)
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS instructors (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT ''
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS disciplines (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		planned_hours INT NOT NULL CHECK (planned_hours >= 0),
		school_id BIGINT NOT NULL,
		cycle_id BIGINT NOT NULL
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS discipline_sections (
		discipline_id BIGINT NOT NULL REFERENCES disciplines(id) ON DELETE CASCADE,
		section_id BIGINT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		instructor_id_1 BIGINT REFERENCES instructors(id) ON DELETE SET NULL,
		instructor_id_2 BIGINT REFERENCES instructors(id) ON DELETE SET NULL,
		PRIMARY KEY (discipline_id, section_id)
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS weeks (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		cycle_id BIGINT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		show_period_13 BOOLEAN NOT NULL DEFAULT FALSE,
		show_period_14 BOOLEAN NOT NULL DEFAULT FALSE,
		show_period_15 BOOLEAN NOT NULL DEFAULT FALSE,
		show_saturday BOOLEAN NOT NULL DEFAULT FALSE,
		saturday_periods INT NOT NULL DEFAULT 0,
		show_sunday BOOLEAN NOT NULL DEFAULT FALSE,
		sunday_periods INT NOT NULL DEFAULT 0,
		CHECK (end_date >= start_date)
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS lesson_blocks (
		id BIGSERIAL PRIMARY KEY,
		section_id BIGINT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		week_id BIGINT NOT NULL REFERENCES weeks(id) ON DELETE CASCADE,
		weekday TEXT NOT NULL CHECK (weekday IN ('monday','tuesday','wednesday','thursday','friday','saturday','sunday')),
		start_period INT NOT NULL CHECK (start_period BETWEEN 1 AND 15),
		duration_periods INT NOT NULL DEFAULT 1 CHECK (duration_periods >= 1),
		discipline_id BIGINT NOT NULL REFERENCES disciplines(id) ON DELETE CASCADE,
		instructor_id BIGINT NOT NULL REFERENCES instructors(id),
		status TEXT NOT NULL CHECK (status IN ('pending','confirmed')),
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (start_period + duration_periods - 1 <= 15)
	)
	`,
	`CREATE UNIQUE INDEX IF NOT EXISTS lesson_blocks_start_slot_key
		ON lesson_blocks (section_id, week_id, weekday, start_period)`,
	`CREATE INDEX IF NOT EXISTS lesson_blocks_budget_idx
		ON lesson_blocks (section_id, discipline_id)`,
	`CREATE INDEX IF NOT EXISTS lesson_blocks_pending_idx
		ON lesson_blocks (id) WHERE status = 'pending'`,
}

func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: statement %d: %w", op, i, err)
		}
	}

	return nil
}
