package avatar

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const avatarCols = `user_id, blob_id, file_name, content_type, size, created_at, updated_at`

func scanAvatar(row pgx.Row) (*Avatar, error) {
	var a Avatar
	err := row.Scan(&a.UserID, &a.BlobID, &a.FileName, &a.ContentType, &a.Size,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Avatar) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO avatars (user_id, blob_id, file_name, content_type, size)
		VALUES ($1, $2, $3, $4, $5)`,
		a.UserID, a.BlobID, a.FileName, a.ContentType, a.Size)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Avatar, error) {
	a, err := scanAvatar(r.pool.QueryRow(ctx,
		`SELECT `+avatarCols+` FROM avatars WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Avatar) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE avatars
		SET blob_id = $2, file_name = $3, content_type = $4, size = $5, updated_at = NOW()
		WHERE user_id = $1`,
		a.UserID, a.BlobID, a.FileName, a.ContentType, a.Size)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM avatars WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
