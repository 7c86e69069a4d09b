package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricare/internal/domain"
)

// AccountRepository define el contrato de persistencia para credenciales.
type AccountRepository interface {
	CreateAccount(ctx context.Context, identity domain.Identity, user domain.User) error
	GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

// CreateAccount inserta identidad y perfil en una sola transaccion para
// no dejar identidades huerfanas si falla la segunda escritura.
func (r *PgAccountRepository) CreateAccount(ctx context.Context, identity domain.Identity, user domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const identityQuery = `
		INSERT INTO identities (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, identityQuery,
		identity.ID,
		identity.Email,
		identity.PasswordHash,
		identity.CreatedAt,
	); err != nil {
		return err
	}

	const userQuery = `
		INSERT INTO users (id, email, name, role, phone, profile_image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, userQuery,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.Phone,
		user.ProfileImage,
		user.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgAccountRepository) GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error) {
	const query = `
		SELECT id, email, password_hash, created_at
		FROM identities
		WHERE email = $1
	`
	var id domain.Identity
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&id.ID,
		&id.Email,
		&id.PasswordHash,
		&id.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Identity{}, err
	}
	return id, err
}

func (r *PgAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	const query = `
		UPDATE identities
		SET password_hash = $2, password_changed_at = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
