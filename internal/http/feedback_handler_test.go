package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"nutricare/internal/domain"
)

type mockDiseaseRepo struct {
	diseases map[string]domain.Disease
}

func newMockDiseaseRepo() *mockDiseaseRepo {
	return &mockDiseaseRepo{diseases: make(map[string]domain.Disease)}
}

func (m *mockDiseaseRepo) Create(_ context.Context, disease domain.Disease) error {
	m.diseases[disease.ID] = disease
	return nil
}

func (m *mockDiseaseRepo) Update(_ context.Context, disease domain.Disease) error {
	if _, ok := m.diseases[disease.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.diseases[disease.ID] = disease
	return nil
}

func (m *mockDiseaseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.diseases[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.diseases, id)
	return nil
}

func (m *mockDiseaseRepo) GetByID(_ context.Context, id string) (domain.Disease, error) {
	disease, ok := m.diseases[id]
	if !ok {
		return domain.Disease{}, pgx.ErrNoRows
	}
	return disease, nil
}

func (m *mockDiseaseRepo) List(_ context.Context) ([]domain.Disease, error) {
	out := make([]domain.Disease, 0, len(m.diseases))
	for _, d := range m.diseases {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDiseaseRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.diseases)), nil
}

type mockMealRepo struct {
	meals map[string]domain.Meal
}

func newMockMealRepo() *mockMealRepo {
	return &mockMealRepo{meals: make(map[string]domain.Meal)}
}

func (m *mockMealRepo) Create(_ context.Context, meal domain.Meal) error {
	m.meals[meal.ID] = meal
	return nil
}

func (m *mockMealRepo) Update(_ context.Context, meal domain.Meal) error {
	if _, ok := m.meals[meal.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.meals[meal.ID] = meal
	return nil
}

func (m *mockMealRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.meals[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.meals, id)
	return nil
}

func (m *mockMealRepo) GetByID(_ context.Context, id string) (domain.Meal, error) {
	meal, ok := m.meals[id]
	if !ok {
		return domain.Meal{}, pgx.ErrNoRows
	}
	return meal, nil
}

func (m *mockMealRepo) ListByDisease(_ context.Context, diseaseID, category string) ([]domain.Meal, error) {
	out := make([]domain.Meal, 0)
	for _, meal := range m.meals {
		if meal.DiseaseID != diseaseID {
			continue
		}
		if category != "" && meal.Category != category {
			continue
		}
		out = append(out, meal)
	}
	return out, nil
}

func (m *mockMealRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.meals)), nil
}

type mockFAQRepo struct {
	faqs []domain.FAQ
}

func (m *mockFAQRepo) List(_ context.Context) ([]domain.FAQ, error) {
	return m.faqs, nil
}

func (m *mockFAQRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.faqs)), nil
}

type mockFeedbackRepo struct {
	items map[string]domain.Feedback
	faqs  *mockFAQRepo
}

func newMockFeedbackRepo(faqs *mockFAQRepo) *mockFeedbackRepo {
	return &mockFeedbackRepo{
		items: make(map[string]domain.Feedback),
		faqs:  faqs,
	}
}

func (m *mockFeedbackRepo) Create(_ context.Context, feedback domain.Feedback) error {
	m.items[feedback.ID] = feedback
	return nil
}

func (m *mockFeedbackRepo) GetByID(_ context.Context, id string) (domain.Feedback, error) {
	fb, ok := m.items[id]
	if !ok {
		return domain.Feedback{}, pgx.ErrNoRows
	}
	return fb, nil
}

func (m *mockFeedbackRepo) ListByUser(_ context.Context, userID string) ([]domain.Feedback, error) {
	out := make([]domain.Feedback, 0)
	for _, fb := range m.items {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (m *mockFeedbackRepo) ListAll(_ context.Context) ([]domain.Feedback, error) {
	out := make([]domain.Feedback, 0, len(m.items))
	for _, fb := range m.items {
		out = append(out, fb)
	}
	return out, nil
}

func (m *mockFeedbackRepo) ReplyAndPublishFAQ(_ context.Context, feedbackID, reply string, repliedAt time.Time, faq domain.FAQ) error {
	fb, ok := m.items[feedbackID]
	if !ok || fb.Status != domain.FeedbackPending {
		return pgx.ErrNoRows
	}
	fb.Status = domain.FeedbackReplied
	fb.AdminReply = reply
	fb.RepliedAt = &repliedAt
	m.items[feedbackID] = fb
	m.faqs.faqs = append(m.faqs.faqs, faq)
	return nil
}

func (m *mockFeedbackRepo) CountByStatus(_ context.Context) (int64, int64, error) {
	var pending, replied int64
	for _, fb := range m.items {
		if fb.Status == domain.FeedbackReplied {
			replied++
		} else {
			pending++
		}
	}
	return pending, replied, nil
}

func TestFeedbackHandlerCreate_RequiresAuth(t *testing.T) {
	env := setupTestEnv()

	rec := performRequest(env.router, http.MethodPost, "/feedback", map[string]any{
		"rating":  5,
		"message": "great app",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}
}

func TestFeedbackHandlerCreateAndListMine(t *testing.T) {
	env := setupTestEnv()
	_, tokens := registerTestUser(t, env, "user@example.com")

	rec := performAuthedRequest(env.router, http.MethodPost, "/feedback", tokens.AccessToken, map[string]any{
		"rating":  5,
		"message": "great app",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create feedback: expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performAuthedRequest(env.router, http.MethodGet, "/feedback", tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list feedback: expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Feedback []domain.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(resp.Feedback) != 1 || resp.Feedback[0].Status != domain.FeedbackPending {
		t.Fatalf("unexpected feedback list: %+v", resp.Feedback)
	}
}

func TestFeedbackHandlerCreate_InvalidRating(t *testing.T) {
	env := setupTestEnv()
	_, tokens := registerTestUser(t, env, "user@example.com")

	rec := performAuthedRequest(env.router, http.MethodPost, "/feedback", tokens.AccessToken, map[string]any{
		"rating":  9,
		"message": "great app",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestFeedbackHandlerAdminSurface_ForbiddenForUser(t *testing.T) {
	env := setupTestEnv()
	_, tokens := registerTestUser(t, env, "user@example.com")

	rec := performAuthedRequest(env.router, http.MethodGet, "/admin/feedback", tokens.AccessToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for non admin, got %d", rec.Code)
	}
}

func TestFeedbackHandlerReplyPublishesFAQ(t *testing.T) {
	env := setupTestEnv()
	_, adminTokens := registerTestUser(t, env, "health@gmail.com")
	_, userTokens := registerTestUser(t, env, "user@example.com")

	rec := performAuthedRequest(env.router, http.MethodPost, "/feedback", userTokens.AccessToken, map[string]any{
		"rating":  4,
		"message": "how do I track meals?",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create feedback: expected status 201, got %d", rec.Code)
	}
	var created struct {
		Feedback domain.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = performAuthedRequest(env.router, http.MethodPost, "/admin/feedback/"+created.Feedback.ID+"/reply", adminTokens.AccessToken, map[string]string{
		"reply": "open a disease and pick a category",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reply: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Responder dos veces el mismo feedback es conflicto.
	rec = performAuthedRequest(env.router, http.MethodPost, "/admin/feedback/"+created.Feedback.ID+"/reply", adminTokens.AccessToken, map[string]string{
		"reply": "second answer",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on second reply, got %d", rec.Code)
	}

	// La FAQ publicada es visible sin sesion.
	rec = performRequest(env.router, http.MethodGet, "/faqs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("faqs: expected status 200, got %d", rec.Code)
	}
	var faqs struct {
		FAQs []domain.FAQ `json:"faqs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &faqs); err != nil {
		t.Fatalf("decode faqs response: %v", err)
	}
	if len(faqs.FAQs) != 1 || faqs.FAQs[0].Question != "how do I track meals?" {
		t.Fatalf("unexpected faqs: %+v", faqs.FAQs)
	}
}

func TestFeedbackHandlerStats(t *testing.T) {
	env := setupTestEnv()
	_, adminTokens := registerTestUser(t, env, "health@gmail.com")
	_, userTokens := registerTestUser(t, env, "user@example.com")

	rec := performAuthedRequest(env.router, http.MethodPost, "/feedback", userTokens.AccessToken, map[string]any{
		"rating":  3,
		"message": "ok",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create feedback: expected status 201, got %d", rec.Code)
	}

	rec = performAuthedRequest(env.router, http.MethodGet, "/admin/stats", adminTokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Stats struct {
			TotalUsers      int64 `json:"total_users"`
			TotalFeedback   int64 `json:"total_feedback"`
			PendingFeedback int64 `json:"pending_feedback"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode stats response: %v", err)
	}
	if resp.Stats.TotalUsers != 2 || resp.Stats.TotalFeedback != 1 || resp.Stats.PendingFeedback != 1 {
		t.Fatalf("unexpected stats: %+v", resp.Stats)
	}
}
