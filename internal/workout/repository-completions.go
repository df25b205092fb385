package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/petrarun/internal/sqlite"
)

type sqliteCompletionRepository struct {
	baseRepository
}

func newSQLiteCompletionRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCompletionRepository {
	return &sqliteCompletionRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Create stores a completion with its exercise records.
func (r *sqliteCompletionRepository) Create(ctx context.Context, c Completion) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	planID := sql.NullInt64{Int64: int64(c.PlanID), Valid: c.PlanID != 0}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO workout_completions (id, plan_id, plan_name, start_time, end_time, total_duration_seconds,
		                                 total_calories_burned, is_fully_completed, user_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, planID, c.PlanName, formatTimestamp(c.StartTime), formatTimestamp(c.EndTime),
		c.TotalDurationSeconds, c.TotalCaloriesBurned, c.IsFullyCompleted, nullableInt(c.UserRating),
	); err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}

	for i, record := range c.CompletedExercises {
		ex := record.Spec
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO completed_exercises (completion_id, position, name, kind, category, duration_seconds, sets,
			                                 reps_per_set, rest_seconds, set_rest_seconds, description_markdown,
			                                 video_url, sets_completed, elapsed_seconds, calories_burned)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, ex.Name, ex.Kind, ex.Category, ex.DurationSeconds, ex.Sets, ex.RepsPerSet,
			nullableInt(ex.RestSeconds), nullableInt(ex.SetRestSeconds), ex.DescriptionMarkdown, ex.VideoURL,
			record.SetsCompleted,
			record.DurationSeconds, record.CaloriesBurned,
		); err != nil {
			return fmt.Errorf("insert completed exercise %d: %w", i, err)
		}
		for set, reps := range record.RepsPerSet {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO completed_exercise_reps (completion_id, exercise_position, set_number, reps)
				VALUES (?, ?, ?, ?)`, c.ID, i, set+1, reps); err != nil {
				return fmt.Errorf("insert reps of exercise %d set %d: %w", i, set+1, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const completionColumns = `id, COALESCE(plan_id, 0), plan_name, start_time, end_time, total_duration_seconds,
       total_calories_burned, is_fully_completed, user_rating`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompletion(row rowScanner) (Completion, error) {
	var (
		c                  Completion
		startTime, endTime string
		rating             sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.PlanID, &c.PlanName, &startTime, &endTime, &c.TotalDurationSeconds,
		&c.TotalCaloriesBurned, &c.IsFullyCompleted, &rating); err != nil {
		return Completion{}, err //nolint:wrapcheck // wrapped by the callers.
	}
	var err error
	if c.StartTime, err = parseTimestamp(startTime); err != nil {
		return Completion{}, fmt.Errorf("parse start_time: %w", err)
	}
	if c.EndTime, err = parseTimestamp(endTime); err != nil {
		return Completion{}, fmt.Errorf("parse end_time: %w", err)
	}
	c.UserRating = intPtr(rating)
	return c, nil
}

// Get retrieves a completion with its exercise records.
func (r *sqliteCompletionRepository) Get(ctx context.Context, id string) (Completion, error) {
	c, err := scanCompletion(r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM workout_completions
		WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Completion{}, ErrNotFound
	}
	if err != nil {
		return Completion{}, fmt.Errorf("query completion: %w", err)
	}
	if c.CompletedExercises, err = r.loadExercises(ctx, id); err != nil {
		return Completion{}, fmt.Errorf("load exercises: %w", err)
	}
	return c, nil
}

// List retrieves the most recent completions, newest first.
func (r *sqliteCompletionRepository) List(ctx context.Context, limit int) (_ []Completion, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT `+completionColumns+`
		FROM workout_completions
		ORDER BY end_time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	completions := []Completion{}
	for rows.Next() {
		var c Completion
		if c, err = scanCompletion(rows); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range completions {
		if completions[i].CompletedExercises, err = r.loadExercises(ctx, completions[i].ID); err != nil {
			return nil, fmt.Errorf("load exercises of %s: %w", completions[i].ID, err)
		}
	}
	return completions, nil
}

func (r *sqliteCompletionRepository) loadExercises(
	ctx context.Context,
	completionID string,
) (_ []CompletedExerciseRecord, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT ce.position, ce.name, ce.kind, ce.category, ce.duration_seconds, ce.sets, ce.reps_per_set,
		       ce.rest_seconds, ce.set_rest_seconds, ce.description_markdown, ce.video_url, ce.sets_completed,
		       ce.elapsed_seconds, ce.calories_burned, cr.reps
		FROM completed_exercises ce
		LEFT JOIN completed_exercise_reps cr
		       ON cr.completion_id = ce.completion_id AND cr.exercise_position = ce.position
		WHERE ce.completion_id = ?
		ORDER BY ce.position, cr.set_number`, completionID)
	if err != nil {
		return nil, fmt.Errorf("query completed exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	records := []CompletedExerciseRecord{}
	lastPosition := -1
	for rows.Next() {
		var (
			position      int
			record        CompletedExerciseRecord
			rest, setRest sql.NullInt64
			reps          sql.NullInt64
		)
		ex := &record.Spec
		if err = rows.Scan(&position, &ex.Name, &ex.Kind, &ex.Category, &ex.DurationSeconds, &ex.Sets,
			&ex.RepsPerSet, &rest, &setRest, &ex.DescriptionMarkdown, &ex.VideoURL, &record.SetsCompleted,
			&record.DurationSeconds,
			&record.CaloriesBurned, &reps); err != nil {
			return nil, fmt.Errorf("scan completed exercise: %w", err)
		}
		if position != lastPosition {
			ex.RestSeconds = intPtr(rest)
			ex.SetRestSeconds = intPtr(setRest)
			records = append(records, record)
			lastPosition = position
		}
		if reps.Valid {
			current := &records[len(records)-1]
			current.RepsPerSet = append(current.RepsPerSet, int(reps.Int64))
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

// SetRating records the user's rating of a completion.
func (r *sqliteCompletionRepository) SetRating(ctx context.Context, id string, rating int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_completions
		SET user_rating = ?
		WHERE id = ?`, rating, id)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
