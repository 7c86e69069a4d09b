package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricare/internal/domain"
)

type DiseaseRepository interface {
	Create(ctx context.Context, disease domain.Disease) error
	Update(ctx context.Context, disease domain.Disease) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Disease, error)
	List(ctx context.Context) ([]domain.Disease, error)
	Count(ctx context.Context) (int64, error)
}

type PgDiseaseRepository struct {
	pool *pgxpool.Pool
}

func NewPgDiseaseRepository(pool *pgxpool.Pool) *PgDiseaseRepository {
	return &PgDiseaseRepository{pool: pool}
}

func (r *PgDiseaseRepository) Create(ctx context.Context, disease domain.Disease) error {
	const query = `
		INSERT INTO diseases (id, name, description, icon, color, did_you_know)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		disease.ID,
		disease.Name,
		disease.Description,
		disease.Icon,
		disease.Color,
		disease.DidYouKnow,
	)
	return err
}

func (r *PgDiseaseRepository) Update(ctx context.Context, disease domain.Disease) error {
	const query = `
		UPDATE diseases
		SET name = $2, description = $3, icon = $4, color = $5, did_you_know = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		disease.ID,
		disease.Name,
		disease.Description,
		disease.Icon,
		disease.Color,
		disease.DidYouKnow,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgDiseaseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM diseases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgDiseaseRepository) GetByID(ctx context.Context, id string) (domain.Disease, error) {
	const query = `
		SELECT id, name, description, icon, color, did_you_know
		FROM diseases
		WHERE id = $1
	`
	var d domain.Disease
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.Icon,
		&d.Color,
		&d.DidYouKnow,
	)
	return d, err
}

func (r *PgDiseaseRepository) List(ctx context.Context) ([]domain.Disease, error) {
	const query = `
		SELECT id, name, description, icon, color, did_you_know
		FROM diseases
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diseases []domain.Disease
	for rows.Next() {
		var d domain.Disease
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Description,
			&d.Icon,
			&d.Color,
			&d.DidYouKnow,
		); err != nil {
			return nil, err
		}
		diseases = append(diseases, d)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return diseases, nil
}

func (r *PgDiseaseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM diseases`).Scan(&n)
	return n, err
}
