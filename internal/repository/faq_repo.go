package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"nutricare/internal/domain"
)

type FAQRepository interface {
	List(ctx context.Context) ([]domain.FAQ, error)
	Count(ctx context.Context) (int64, error)
}

type PgFAQRepository struct {
	pool *pgxpool.Pool
}

func NewPgFAQRepository(pool *pgxpool.Pool) *PgFAQRepository {
	return &PgFAQRepository{pool: pool}
}

func (r *PgFAQRepository) List(ctx context.Context) ([]domain.FAQ, error) {
	const query = `
		SELECT id, question, answer, created_at
		FROM faqs
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []domain.FAQ
	for rows.Next() {
		var f domain.FAQ
		if err := rows.Scan(
			&f.ID,
			&f.Question,
			&f.Answer,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		faqs = append(faqs, f)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return faqs, nil
}

func (r *PgFAQRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM faqs`).Scan(&n)
	return n, err
}
