package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/careshift/internal/domain"
)

// isForeignKeyViolation reports whether err is a PostgreSQL FK violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// SaveTask inserts a task or replaces every column of an existing one.
func (s *Store) SaveTask(ctx context.Context, task domain.Task) error {
	row := taskToRow(task)

	placeholders := make([]string, len(row.args()))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (`+strings.Join(placeholders, ", ")+`)
		ON CONFLICT (kind, id) DO UPDATE SET
			facility_id = excluded.facility_id,
			category_id = excluded.category_id,
			shift_id = excluded.shift_id,
			due_date = excluded.due_date,
			resident_id = excluded.resident_id,
			description = excluded.description,
			notes = excluded.notes,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			completed_by_shift_id = excluded.completed_by_shift_id,
			exception_id = excluded.exception_id,
			exception_at = excluded.exception_at,
			locked = excluded.locked,
			recurrence_kind = excluded.recurrence_kind,
			recurrence_cycle = excluded.recurrence_cycle,
			recurrence_weekdays = excluded.recurrence_weekdays,
			recurrence_shifts = excluded.recurrence_shifts,
			recurrence_by_weekday = excluded.recurrence_by_weekday,
			recurrence_start = excluded.recurrence_start,
			recurrence_end = excluded.recurrence_end`,
		row.args()...)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrFacilityNotFound, task.FacilityID)
	}
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.Ref(), err)
	}
	return nil
}

// ListTasks returns a facility's tasks ordered by kind and id.
//
// With DueOn set, only non-recurring tasks due that day and recurring tasks
// whose rule bounds include that day are returned; whether a recurring rule
// actually occurs on the day is decided by the caller.
func (s *Store) ListTasks(ctx context.Context, params domain.ListTasksParams) ([]domain.Task, error) {
	var kind pgtype.Text
	if params.Kind != nil {
		kind = pgtype.Text{String: string(*params.Kind), Valid: true}
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE facility_id = $1
		  AND ($2::text IS NULL OR kind = $2)
		  AND ($3::date IS NULL
		       OR (recurrence_kind IS NULL AND due_date = $3)
		       OR (recurrence_kind IS NOT NULL
		           AND recurrence_start <= $3
		           AND (recurrence_end IS NULL OR recurrence_end >= $3)))
		ORDER BY kind, id`,
		params.FacilityID, kind, dateToPgtype(params.DueOn))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var r taskRow
		if err := rows.Scan(r.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task, err := rowToTask(r)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// FindTask returns the task identified by ref.
func (s *Store) FindTask(ctx context.Context, ref domain.TaskRef) (*domain.Task, error) {
	var r taskRow
	err := s.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE kind = $1 AND id = $2`,
		string(ref.Kind), ref.ID,
	).Scan(r.scanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task %s: %w", ref, err)
	}

	task, err := rowToTask(r)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// OccurrenceStates returns the stored states of the facility's recurring
// task occurrences on date.
func (s *Store) OccurrenceStates(ctx context.Context, facilityID string, date domain.Date) (map[domain.TaskRef]domain.OccurrenceState, error) {
	rows, err := s.db.Query(ctx, `
		SELECT o.task_kind, o.task_id, o.occurrence_date, o.completed, o.completed_at,
		       o.completed_by_shift_id, o.exception_id, o.exception_at
		FROM task_occurrence_status o
		JOIN tasks t ON t.kind = o.task_kind AND t.id = o.task_id
		WHERE t.facility_id = $1 AND o.occurrence_date = $2`,
		facilityID, dateToPgtype(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrence states: %w", err)
	}
	defer rows.Close()

	states := make(map[domain.TaskRef]domain.OccurrenceState)
	for rows.Next() {
		var r occurrenceRow
		if err := rows.Scan(r.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence state: %w", err)
		}
		st, err := rowToOccurrence(r)
		if err != nil {
			return nil, err
		}
		states[st.Task] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate occurrence states: %w", err)
	}
	return states, nil
}

// SaveTaskStatus writes the task's status and appends transition to the
// status history in one transaction. A one-off task's status lives on its
// tasks row; a recurring task's occurrence is upserted into
// task_occurrence_status under its due date. History ids are UUIDv7 so they
// sort by creation time.
func (s *Store) SaveTaskStatus(ctx context.Context, task *domain.Task, transition domain.StatusTransition) error {
	return s.executeInTransaction(ctx, "save_task_status", func(tx *Store) error {
		save := tx.saveTaskRowStatus
		if task.IsRecurring() {
			save = tx.saveOccurrenceStatus
		}
		if err := save(ctx, *task); err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate history id: %w", err)
		}

		_, err = tx.db.Exec(ctx, `
			INSERT INTO task_status_history (id, task_kind, task_id, occurrence_date, action, shift_id, completed, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			pgtype.UUID{Bytes: id, Valid: true}, string(transition.Task.Kind), transition.Task.ID,
			dateToPgtype(transition.Occurrence), string(transition.Action),
			intPtrToPgtype(transition.ShiftID), transition.Completed, transition.At)
		if err != nil {
			return fmt.Errorf("failed to insert status history: %w", err)
		}
		return nil
	})
}

func (s *Store) saveTaskRowStatus(ctx context.Context, task domain.Task) error {
	row := taskToRow(task)
	tag, err := s.db.Exec(ctx, `
		UPDATE tasks SET
			completed = $3,
			completed_at = $4,
			completed_by_shift_id = $5,
			exception_id = $6,
			exception_at = $7
		WHERE kind = $1 AND id = $2`,
		row.Kind, row.ID, row.Completed, row.CompletedAt, row.CompletedByShiftID, row.ExceptionID, row.ExceptionAt)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, task.Ref())
	}
	return nil
}

func (s *Store) saveOccurrenceStatus(ctx context.Context, task domain.Task) error {
	row := occurrenceToRow(task.State())
	_, err := s.db.Exec(ctx, `
		INSERT INTO task_occurrence_status (`+occurrenceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (task_kind, task_id, occurrence_date) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			completed_by_shift_id = excluded.completed_by_shift_id,
			exception_id = excluded.exception_id,
			exception_at = excluded.exception_at`,
		row.args()...)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, task.Ref())
	}
	if err != nil {
		return fmt.Errorf("failed to save occurrence %s of %s: %w", task.DueDate, task.Ref(), err)
	}
	return nil
}

// TaskHistory returns a task's status transitions, oldest first.
func (s *Store) TaskHistory(ctx context.Context, ref domain.TaskRef) ([]domain.StatusTransition, error) {
	rows, err := s.db.Query(ctx, `
		SELECT action, occurrence_date, shift_id, completed, changed_at
		FROM task_status_history
		WHERE task_kind = $1 AND task_id = $2
		ORDER BY changed_at, id`,
		string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}

	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatusTransition, error) {
		var (
			action     string
			occurrence pgtype.Date
			shiftID    pgtype.Int4
			changed    pgtype.Timestamptz
		)
		tr := domain.StatusTransition{Task: ref}
		if err := row.Scan(&action, &occurrence, &shiftID, &tr.Completed, &changed); err != nil {
			return tr, err
		}
		tr.Occurrence = pgtypeToDate(occurrence)
		tr.Action = domain.TransitionAction(action)
		tr.ShiftID = pgtypeToIntPtr(shiftID)
		tr.At = changed.Time.UTC()
		return tr, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan status history: %w", err)
	}
	return history, nil
}
