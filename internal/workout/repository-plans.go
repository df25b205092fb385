package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/petrarun/internal/sqlite"
)

type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// List retrieves all plans with their exercises ordered by plan id.
func (r *sqlitePlanRepository) List(ctx context.Context) (_ []Plan, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name
		FROM exercise_plans
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err = rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range plans {
		if plans[i].Exercises, err = r.loadExercises(ctx, plans[i].ID); err != nil {
			return nil, fmt.Errorf("load exercises of plan %d: %w", plans[i].ID, err)
		}
	}
	return plans, nil
}

// Get retrieves a plan by id.
func (r *sqlitePlanRepository) Get(ctx context.Context, id int) (Plan, error) {
	p := Plan{ID: id, Name: "", Exercises: nil}
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT name
		FROM exercise_plans
		WHERE id = ?`, id).Scan(&p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("query plan: %w", err)
	}
	if p.Exercises, err = r.loadExercises(ctx, id); err != nil {
		return Plan{}, fmt.Errorf("load exercises: %w", err)
	}
	return p, nil
}

func (r *sqlitePlanRepository) loadExercises(ctx context.Context, planID int) (_ []ExerciseSpec, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT name, kind, category, duration_seconds, sets, reps_per_set,
		       rest_seconds, set_rest_seconds, description_markdown, video_url
		FROM plan_exercises
		WHERE plan_id = ?
		ORDER BY position`, planID)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []ExerciseSpec
	for rows.Next() {
		var (
			ex            ExerciseSpec
			rest, setRest sql.NullInt64
		)
		if err = rows.Scan(&ex.Name, &ex.Kind, &ex.Category, &ex.DurationSeconds, &ex.Sets, &ex.RepsPerSet,
			&rest, &setRest, &ex.DescriptionMarkdown, &ex.VideoURL); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		ex.RestSeconds = intPtr(rest)
		ex.SetRestSeconds = intPtr(setRest)
		exercises = append(exercises, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

// Create stores a new plan and returns it with its assigned id.
func (r *sqlitePlanRepository) Create(ctx context.Context, p Plan) (_ Plan, err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return Plan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = tx.QueryRowContext(ctx, `
		INSERT INTO exercise_plans (name)
		VALUES (?)
		RETURNING id`, p.Name).Scan(&p.ID); err != nil {
		return Plan{}, fmt.Errorf("insert plan: %w", err)
	}

	for i, ex := range p.Exercises {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO plan_exercises (plan_id, position, name, kind, category, duration_seconds, sets,
			                            reps_per_set, rest_seconds, set_rest_seconds, description_markdown, video_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, i, ex.Name, ex.Kind, ex.Category, ex.DurationSeconds, ex.Sets, ex.RepsPerSet,
			nullableInt(ex.RestSeconds), nullableInt(ex.SetRestSeconds), ex.DescriptionMarkdown, ex.VideoURL,
		); err != nil {
			return Plan{}, fmt.Errorf("insert exercise %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Plan{}, fmt.Errorf("commit transaction: %w", err)
	}
	return p, nil
}
