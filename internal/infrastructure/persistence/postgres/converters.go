package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/careshift/internal/domain"
)

// === pgtype Conversion Helpers ===

// dateToPgtype converts a domain date to pgtype.Date (NULL for the zero date).
func dateToPgtype(d domain.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.StartOfDay(time.UTC), Valid: true}
}

func datePtrToPgtype(d *domain.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return dateToPgtype(*d)
}

// pgtypeToDate converts pgtype.Date to a domain date (zero if NULL).
// pgx decodes DATE as midnight UTC.
func pgtypeToDate(d pgtype.Date) domain.Date {
	if !d.Valid {
		return domain.Date{}
	}
	return domain.DateOf(d.Time.UTC())
}

func pgtypeToDatePtr(d pgtype.Date) *domain.Date {
	if !d.Valid {
		return nil
	}
	date := pgtypeToDate(d)
	return &date
}

// timePtrToPgtype converts *time.Time to pgtype.Timestamptz, NULL for nil.
func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// pgtypeToTimePtr converts pgtype.Timestamptz to *time.Time in UTC (nil if NULL).
func pgtypeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func intPtrToPgtype(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func pgtypeToIntPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}

func int64PtrToPgtype(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func pgtypeToInt64Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

// === Task Conversion ===

const taskColumns = `kind, id, facility_id, category_id, shift_id, due_date,
	resident_id, description, notes,
	completed, completed_at, completed_by_shift_id, exception_id, exception_at, locked,
	recurrence_kind, recurrence_cycle, recurrence_weekdays, recurrence_shifts,
	recurrence_by_weekday, recurrence_start, recurrence_end`

// taskRow mirrors one row of the tasks table, in taskColumns order.
type taskRow struct {
	Kind        string
	ID          int64
	FacilityID  string
	CategoryID  int32
	ShiftID     int32
	DueDate     pgtype.Date
	ResidentID  int64
	Description string
	Notes       string

	Completed          bool
	CompletedAt        pgtype.Timestamptz
	CompletedByShiftID pgtype.Int4
	ExceptionID        pgtype.Int8
	ExceptionAt        pgtype.Timestamptz
	Locked             bool

	RecurrenceKind      pgtype.Text
	RecurrenceCycle     pgtype.Int4
	RecurrenceWeekdays  int16
	RecurrenceShifts    []string
	RecurrenceByWeekday bool
	RecurrenceStart     pgtype.Date
	RecurrenceEnd       pgtype.Date
}

func (r *taskRow) scanTargets() []any {
	return []any{
		&r.Kind, &r.ID, &r.FacilityID, &r.CategoryID, &r.ShiftID, &r.DueDate,
		&r.ResidentID, &r.Description, &r.Notes,
		&r.Completed, &r.CompletedAt, &r.CompletedByShiftID, &r.ExceptionID, &r.ExceptionAt, &r.Locked,
		&r.RecurrenceKind, &r.RecurrenceCycle, &r.RecurrenceWeekdays, &r.RecurrenceShifts,
		&r.RecurrenceByWeekday, &r.RecurrenceStart, &r.RecurrenceEnd,
	}
}

func (r *taskRow) args() []any {
	return []any{
		r.Kind, r.ID, r.FacilityID, r.CategoryID, r.ShiftID, r.DueDate,
		r.ResidentID, r.Description, r.Notes,
		r.Completed, r.CompletedAt, r.CompletedByShiftID, r.ExceptionID, r.ExceptionAt, r.Locked,
		r.RecurrenceKind, r.RecurrenceCycle, r.RecurrenceWeekdays, r.RecurrenceShifts,
		r.RecurrenceByWeekday, r.RecurrenceStart, r.RecurrenceEnd,
	}
}

// rowToTask converts a database row to a domain task. Stored recurrence
// columns go through rule validation again.
func rowToTask(r taskRow) (domain.Task, error) {
	kind, err := domain.NewTaskKind(r.Kind)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %d: %w", r.ID, err)
	}

	task := domain.Task{
		ID:                 r.ID,
		FacilityID:         r.FacilityID,
		CategoryID:         int(r.CategoryID),
		ShiftID:            int(r.ShiftID),
		DueDate:            pgtypeToDate(r.DueDate),
		Completed:          r.Completed,
		CompletedAt:        pgtypeToTimePtr(r.CompletedAt),
		CompletedByShiftID: pgtypeToIntPtr(r.CompletedByShiftID),
		ExceptionID:        pgtypeToInt64Ptr(r.ExceptionID),
		ExceptionAt:        pgtypeToTimePtr(r.ExceptionAt),
		Locked:             r.Locked,
	}

	switch kind {
	case domain.TaskUnscheduled:
		task.Detail = domain.UnscheduledDetail{ResidentID: r.ResidentID, Description: r.Description, TaskNotes: r.Notes}
	default:
		task.Detail = domain.ScheduledDetail{ResidentID: r.ResidentID, Notes: r.Notes}
	}

	if r.RecurrenceKind.Valid {
		shifts := make([]domain.ShiftName, len(r.RecurrenceShifts))
		for i, s := range r.RecurrenceShifts {
			shifts[i] = domain.ShiftName(s)
		}

		rule, err := domain.NewRecurrenceRule(domain.RecurrenceParams{
			Kind:        domain.RecurrenceKind(r.RecurrenceKind.String),
			CycleLength: int(r.RecurrenceCycle.Int32),
			Weekdays:    domain.WeekdaySet(r.RecurrenceWeekdays),
			Shifts:      domain.NewShiftNameSet(shifts...),
			ByWeekday:   r.RecurrenceByWeekday,
			StartDate:   pgtypeToDate(r.RecurrenceStart),
			EndDate:     pgtypeToDatePtr(r.RecurrenceEnd),
		})
		if err != nil {
			return domain.Task{}, fmt.Errorf("task %s: %w", task.Ref(), err)
		}
		task.Recurrence = &rule
	}

	return task, nil
}

// taskToRow converts a domain task to its database row.
func taskToRow(t domain.Task) taskRow {
	r := taskRow{
		Kind:               string(t.Kind()),
		ID:                 t.ID,
		FacilityID:         t.FacilityID,
		CategoryID:         int32(t.CategoryID),
		ShiftID:            int32(t.ShiftID),
		DueDate:            dateToPgtype(t.DueDate),
		Completed:          t.Completed,
		CompletedAt:        timePtrToPgtype(t.CompletedAt),
		CompletedByShiftID: intPtrToPgtype(t.CompletedByShiftID),
		ExceptionID:        int64PtrToPgtype(t.ExceptionID),
		ExceptionAt:        timePtrToPgtype(t.ExceptionAt),
		Locked:             t.Locked,
		RecurrenceShifts:   []string{},
	}

	switch d := t.Detail.(type) {
	case domain.ScheduledDetail:
		r.ResidentID = d.ResidentID
		r.Notes = d.Notes
	case domain.UnscheduledDetail:
		r.ResidentID = d.ResidentID
		r.Description = d.Description
		r.Notes = d.TaskNotes
	}

	if t.IsRecurring() {
		p := t.Recurrence.Params()
		r.RecurrenceKind = pgtype.Text{String: string(p.Kind), Valid: true}
		r.RecurrenceCycle = pgtype.Int4{Int32: int32(p.CycleLength), Valid: true}
		r.RecurrenceWeekdays = int16(p.Weekdays)
		r.RecurrenceByWeekday = p.ByWeekday
		r.RecurrenceStart = dateToPgtype(p.StartDate)
		r.RecurrenceEnd = datePtrToPgtype(p.EndDate)
		for _, s := range p.Shifts {
			r.RecurrenceShifts = append(r.RecurrenceShifts, string(s))
		}
	}

	return r
}

// === Shift Conversion ===

// shiftRow mirrors one row of the facility_shifts table.
type shiftRow struct {
	FacilityID string
	ShiftID    int32
	Name       string
	StartUTC   string
	EndUTC     string
	IsRollOver bool
}

func rowToShift(r shiftRow) (domain.ShiftDefinition, error) {
	start, err := domain.ParseTimeOfDay(r.StartUTC)
	if err != nil {
		return domain.ShiftDefinition{}, fmt.Errorf("shift %d start: %w", r.ShiftID, err)
	}
	end, err := domain.ParseTimeOfDay(r.EndUTC)
	if err != nil {
		return domain.ShiftDefinition{}, fmt.Errorf("shift %d end: %w", r.ShiftID, err)
	}
	return domain.ShiftDefinition{
		ID:           int(r.ShiftID),
		Name:         domain.NewShiftName(r.Name),
		Start:        start,
		End:          end,
		RollOverHint: r.IsRollOver,
	}, nil
}

func shiftToRow(facilityID string, s domain.ShiftDefinition) shiftRow {
	return shiftRow{
		FacilityID: facilityID,
		ShiftID:    int32(s.ID),
		Name:       string(s.Name),
		StartUTC:   s.Start.String(),
		EndUTC:     s.End.String(),
		IsRollOver: s.RollOverHint,
	}
}

// === Occurrence Conversion ===

// occurrenceRow mirrors one row of the task_occurrence_status table.
type occurrenceRow struct {
	Kind               string
	ID                 int64
	OccurrenceDate     pgtype.Date
	Completed          bool
	CompletedAt        pgtype.Timestamptz
	CompletedByShiftID pgtype.Int4
	ExceptionID        pgtype.Int8
	ExceptionAt        pgtype.Timestamptz
}

const occurrenceColumns = `task_kind, task_id, occurrence_date, completed, completed_at,
	completed_by_shift_id, exception_id, exception_at`

func (r *occurrenceRow) scanTargets() []any {
	return []any{
		&r.Kind, &r.ID, &r.OccurrenceDate, &r.Completed, &r.CompletedAt,
		&r.CompletedByShiftID, &r.ExceptionID, &r.ExceptionAt,
	}
}

func (r *occurrenceRow) args() []any {
	return []any{
		r.Kind, r.ID, r.OccurrenceDate, r.Completed, r.CompletedAt,
		r.CompletedByShiftID, r.ExceptionID, r.ExceptionAt,
	}
}

func occurrenceToRow(st domain.OccurrenceState) occurrenceRow {
	return occurrenceRow{
		Kind:               string(st.Task.Kind),
		ID:                 st.Task.ID,
		OccurrenceDate:     dateToPgtype(st.Date),
		Completed:          st.Completed,
		CompletedAt:        timePtrToPgtype(st.CompletedAt),
		CompletedByShiftID: intPtrToPgtype(st.CompletedByShiftID),
		ExceptionID:        int64PtrToPgtype(st.ExceptionID),
		ExceptionAt:        timePtrToPgtype(st.ExceptionAt),
	}
}

func rowToOccurrence(r occurrenceRow) (domain.OccurrenceState, error) {
	kind, err := domain.NewTaskKind(r.Kind)
	if err != nil {
		return domain.OccurrenceState{}, fmt.Errorf("occurrence of task %d: %w", r.ID, err)
	}
	return domain.OccurrenceState{
		Task:               domain.TaskRef{Kind: kind, ID: r.ID},
		Date:               pgtypeToDate(r.OccurrenceDate),
		Completed:          r.Completed,
		CompletedAt:        pgtypeToTimePtr(r.CompletedAt),
		CompletedByShiftID: pgtypeToIntPtr(r.CompletedByShiftID),
		ExceptionID:        pgtypeToInt64Ptr(r.ExceptionID),
		ExceptionAt:        pgtypeToTimePtr(r.ExceptionAt),
	}, nil
}
