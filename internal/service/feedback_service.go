package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"nutricare/internal/domain"
	"nutricare/internal/repository"
)

var (
	ErrInvalidRating    = errors.New("rating out of range")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrEmptyReply       = errors.New("reply is empty")
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrFeedbackReplied  = errors.New("feedback already replied")
)

// FeedbackService coordina valoraciones de usuarios y respuestas admin.
type FeedbackService struct {
	logger   *zap.Logger
	feedback repository.FeedbackRepository
	faqs     repository.FAQRepository
	users    repository.UserRepository
	diseases repository.DiseaseRepository
	meals    repository.MealRepository
}

func NewFeedbackService(logger *zap.Logger, feedback repository.FeedbackRepository, faqs repository.FAQRepository, users repository.UserRepository, diseases repository.DiseaseRepository, meals repository.MealRepository) *FeedbackService {
	return &FeedbackService{
		logger:   logger,
		feedback: feedback,
		faqs:     faqs,
		users:    users,
		diseases: diseases,
		meals:    meals,
	}
}

func (s *FeedbackService) Create(ctx context.Context, user domain.User, rating int, message string) (domain.Feedback, error) {
	if rating < 1 || rating > 5 {
		return domain.Feedback{}, ErrInvalidRating
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Feedback{}, ErrEmptyMessage
	}

	fb := domain.Feedback{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    rating,
		Message:   message,
		Status:    domain.FeedbackPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}

func (s *FeedbackService) ListForUser(ctx context.Context, userID string) ([]domain.Feedback, error) {
	return s.feedback.ListByUser(ctx, userID)
}

func (s *FeedbackService) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	return s.feedback.ListAll(ctx)
}

// Reply aplica la respuesta admin una sola vez (pending -> replied,
// irreversible) y publica el par pregunta/respuesta como FAQ; ambas
// escrituras van en la misma transaccion.
func (s *FeedbackService) Reply(ctx context.Context, feedbackID, reply string) (domain.Feedback, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return domain.Feedback{}, ErrEmptyReply
	}

	fb, err := s.feedback.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feedback{}, ErrFeedbackNotFound
		}
		return domain.Feedback{}, err
	}
	if fb.Status == domain.FeedbackReplied {
		return domain.Feedback{}, ErrFeedbackReplied
	}

	repliedAt := time.Now().UTC()
	faq := domain.FAQ{
		ID:        uuid.NewString(),
		Question:  fb.Message,
		Answer:    reply,
		CreatedAt: repliedAt,
	}
	if err := s.feedback.ReplyAndPublishFAQ(ctx, fb.ID, reply, repliedAt, faq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Otro admin gano la carrera.
			return domain.Feedback{}, ErrFeedbackReplied
		}
		return domain.Feedback{}, err
	}

	fb.Status = domain.FeedbackReplied
	fb.AdminReply = reply
	fb.RepliedAt = &repliedAt
	return fb, nil
}

func (s *FeedbackService) ListFAQs(ctx context.Context) ([]domain.FAQ, error) {
	return s.faqs.List(ctx)
}

type DashboardStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalDiseases   int64 `json:"total_diseases"`
	TotalMeals      int64 `json:"total_meals"`
	TotalFeedback   int64 `json:"total_feedback"`
	PendingFeedback int64 `json:"pending_feedback"`
	RepliedFeedback int64 `json:"replied_feedback"`
}

func (s *FeedbackService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.TotalDiseases, err = s.diseases.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.TotalMeals, err = s.meals.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	pending, replied, err := s.feedback.CountByStatus(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.PendingFeedback = pending
	stats.RepliedFeedback = replied
	stats.TotalFeedback = pending + replied
	return stats, nil
}
