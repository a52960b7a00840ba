package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `a.id, to_char(a.date, 'YYYY-MM-DD'), to_char(a.time_of_day, 'HH24:MI'),
	a.visit_type, a.created_for, u.first_name || ' ' || u.last_name,
	a.is_closed, a.description, a.created_at, a.updated_at`

const apptFrom = ` FROM appointments a JOIN users u ON u.id = a.created_for`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a         Appointment
		date, tod string
		visitType string
	)
	err := row.Scan(&a.ID, &date, &tod, &visitType, &a.CreatedFor, &a.CreatedForName,
		&a.IsClosed, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Date = Date(date)
	a.Time = TimeOfDay(tod)
	a.VisitType = VisitType(visitType)
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, date, time_of_day, visit_type, created_for, is_closed, description)
		VALUES ($1, $2::date, $3::time, $4, $5, $6, $7)`,
		a.ID, string(a.Date), string(a.Time), string(a.VisitType), a.CreatedFor, a.IsClosed, a.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET date = $2::date, time_of_day = $3::time, visit_type = $4, is_closed = $5,
			description = $6, updated_at = NOW()
		WHERE id = $1`,
		a.ID, string(a.Date), string(a.Time), string(a.VisitType), a.IsClosed, a.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// orderColumns whitelists sortable fields to their SQL expressions.
var orderColumns = map[string]string{
	"id":          "a.id",
	"date":        "a.date",
	"time":        "a.time_of_day",
	"created_for": "a.created_for",
	"is_closed":   "a.is_closed",
}

func orderClause(orderBy []string) string {
	var parts []string
	for _, field := range orderBy {
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		col, ok := orderColumns[field]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return " ORDER BY a.date ASC, a.time_of_day ASC"
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (f Filter) where() (string, []interface{}) {
	clauses := []string{"1=1"}
	var args []interface{}
	add := func(expr string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if f.ID != nil {
		add("a.id = $%d", *f.ID)
	}
	if f.CreatedFor != nil {
		add("a.created_for = $%d", *f.CreatedFor)
	}
	if f.CreatedForName != "" {
		args = append(args, f.CreatedForName)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(u.first_name ILIKE '%%' || $%d || '%%' OR u.last_name ILIKE '%%' || $%d || '%%')", n, n))
	}
	if f.VisitType != nil {
		add("a.visit_type = $%d", string(*f.VisitType))
	}
	if f.IsClosed != nil {
		add("a.is_closed = $%d", *f.IsClosed)
	}
	if f.Date != nil {
		add("a.date = $%d::date", string(*f.Date))
	}
	if f.DateAfter != nil {
		add("a.date > $%d::date", string(*f.DateAfter))
	}
	if f.DateBefore != nil {
		add("a.date < $%d::date", string(*f.DateBefore))
	}
	if f.Time != nil {
		add("a.time_of_day = $%d::time", string(*f.Time))
	}
	if f.TimeAfter != nil {
		add("a.time_of_day > $%d::time", string(*f.TimeAfter))
	}
	if f.TimeBefore != nil {
		add("a.time_of_day < $%d::time", string(*f.TimeBefore))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where, args := f.where()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+apptFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + apptFrom + where + orderClause(f.OrderBy) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListTimes(ctx context.Context, patientID uuid.UUID, date Date, exclude *uuid.UUID) ([]TimeOfDay, error) {
	query := `SELECT to_char(time_of_day, 'HH24:MI') FROM appointments
		WHERE created_for = $1 AND date = $2::date`
	args := []interface{}{patientID, string(date)}
	if exclude != nil {
		query += ` AND id <> $3`
		args = append(args, *exclude)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []TimeOfDay
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, TimeOfDay(t))
	}
	return times, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.created_for = $1 ORDER BY a.date, a.time_of_day`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
