package note

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const noteCols = `n.id, n.appointment_id, n.description, n.created_by,
	u.first_name || ' ' || u.last_name, n.created_on`

const noteFrom = ` FROM notes n JOIN users u ON u.id = n.created_by`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.AppointmentID, &n.Description, &n.CreatedBy,
		&n.CreatedByName, &n.CreatedOn)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) Create(ctx context.Context, n *Note) error {
	n.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notes (id, appointment_id, description, created_by, created_on)
		VALUES ($1, $2, $3, $4, NOW())`,
		n.ID, n.AppointmentID, n.Description, n.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	n, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteCols+noteFrom+` WHERE n.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

// Update rewrites the body, reassigns authorship and restarts created_on.
func (r *repoPG) Update(ctx context.Context, n *Note) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notes
		SET description = $2, created_by = $3, created_on = NOW()
		WHERE id = $1`,
		n.ID, n.Description, n.CreatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notes WHERE appointment_id = $1`, appointmentID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteCols+noteFrom+` WHERE n.appointment_id = $1
		ORDER BY n.created_on DESC LIMIT $2 OFFSET $3`,
		appointmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
