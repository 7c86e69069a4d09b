package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricare/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback domain.Feedback) error
	GetByID(ctx context.Context, id string) (domain.Feedback, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Feedback, error)
	ListAll(ctx context.Context) ([]domain.Feedback, error)
	ReplyAndPublishFAQ(ctx context.Context, feedbackID, reply string, repliedAt time.Time, faq domain.FAQ) error
	CountByStatus(ctx context.Context) (pending, replied int64, err error)
}

type PgFeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewPgFeedbackRepository(pool *pgxpool.Pool) *PgFeedbackRepository {
	return &PgFeedbackRepository{pool: pool}
}

func (r *PgFeedbackRepository) Create(ctx context.Context, feedback domain.Feedback) error {
	const query = `
		INSERT INTO feedback (id, user_id, user_name, rating, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		feedback.ID,
		feedback.UserID,
		feedback.UserName,
		feedback.Rating,
		feedback.Message,
		feedback.Status,
		feedback.CreatedAt,
	)
	return err
}

func (r *PgFeedbackRepository) GetByID(ctx context.Context, id string) (domain.Feedback, error) {
	const query = `
		SELECT id, user_id, user_name, rating, message, status, admin_reply, created_at, replied_at
		FROM feedback
		WHERE id = $1
	`
	return scanFeedbackRow(r.pool.QueryRow(ctx, query, id))
}

func (r *PgFeedbackRepository) ListByUser(ctx context.Context, userID string) ([]domain.Feedback, error) {
	const query = `
		SELECT id, user_id, user_name, rating, message, status, admin_reply, created_at, replied_at
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *PgFeedbackRepository) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	const query = `
		SELECT id, user_id, user_name, rating, message, status, admin_reply, created_at, replied_at
		FROM feedback
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

// ReplyAndPublishFAQ aplica la respuesta y publica el FAQ en una sola
// transaccion. Devuelve pgx.ErrNoRows si el feedback ya fue respondido.
func (r *PgFeedbackRepository) ReplyAndPublishFAQ(ctx context.Context, feedbackID, reply string, repliedAt time.Time, faq domain.FAQ) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const replyQuery = `
		UPDATE feedback
		SET admin_reply = $2, status = $3, replied_at = $4
		WHERE id = $1 AND status = $5
	`
	tag, err := tx.Exec(ctx, replyQuery,
		feedbackID,
		reply,
		domain.FeedbackReplied,
		repliedAt,
		domain.FeedbackPending,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const faqQuery = `
		INSERT INTO faqs (id, question, answer, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, faqQuery,
		faq.ID,
		faq.Question,
		faq.Answer,
		faq.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgFeedbackRepository) CountByStatus(ctx context.Context) (int64, int64, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM feedback
	`
	var pending, replied int64
	err := r.pool.QueryRow(ctx, query, domain.FeedbackPending, domain.FeedbackReplied).Scan(&pending, &replied)
	return pending, replied, err
}

func (r *PgFeedbackRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Feedback, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedbackRow(rows)
		if err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, fb)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return feedbacks, nil
}

func scanFeedbackRow(row pgx.Row) (domain.Feedback, error) {
	var fb domain.Feedback
	var adminReply *string
	err := row.Scan(
		&fb.ID,
		&fb.UserID,
		&fb.UserName,
		&fb.Rating,
		&fb.Message,
		&fb.Status,
		&adminReply,
		&fb.CreatedAt,
		&fb.RepliedAt,
	)
	if err != nil {
		return domain.Feedback{}, err
	}
	if adminReply != nil {
		fb.AdminReply = *adminReply
	}
	return fb, nil
}
