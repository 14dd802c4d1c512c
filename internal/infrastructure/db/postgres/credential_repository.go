package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

const uniqueViolation = "23505"

const insertCredentialQuery = `INSERT INTO credentials (username, password, created_at)
VALUES ($1, $2, $3)
RETURNING id`

const selectCredentialQuery = `SELECT id, username, password, created_at FROM credentials WHERE username = $1`

type CredentialRepository struct {
	db sqlx.ExtContext
}

func NewCredentialRepository(db sqlx.ExtContext) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	created := *cred
	err := r.db.QueryRowxContext(ctx, insertCredentialQuery,
		cred.Username, cred.Password, cred.CreatedAt.UTC()).Scan(&created.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &created, nil
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	var cred domain.Credential
	if err := sqlx.GetContext(ctx, r.db, &cred, selectCredentialQuery, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	cred.CreatedAt = cred.CreatedAt.UTC()
	return &cred, nil
}
