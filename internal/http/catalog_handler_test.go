package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"nutricare/internal/domain"
)

func createTestDisease(t *testing.T, env *testEnv, token, name string) domain.Disease {
	t.Helper()
	rec := performAuthedRequest(env.router, http.MethodPost, "/admin/diseases", token, map[string]any{
		"name":         name,
		"description":  "test disease",
		"did_you_know": []string{"fact one"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create disease: expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Disease domain.Disease `json:"disease"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode disease response: %v", err)
	}
	return resp.Disease
}

func TestCatalogHandlerPublicListing(t *testing.T) {
	env := setupTestEnv()
	_, adminTokens := registerTestUser(t, env, "health@gmail.com")
	disease := createTestDisease(t, env, adminTokens.AccessToken, "Diabetes")

	rec := performAuthedRequest(env.router, http.MethodPost, "/admin/meals", adminTokens.AccessToken, map[string]any{
		"disease_id": disease.ID,
		"category":   domain.CategoryBreakfast,
		"name":       "Oatmeal",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create meal: expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// El catalogo es publico, sin token.
	rec = performRequest(env.router, http.MethodGet, "/diseases", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list diseases: expected status 200, got %d", rec.Code)
	}
	var diseases struct {
		Diseases []domain.Disease `json:"diseases"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &diseases); err != nil {
		t.Fatalf("decode diseases: %v", err)
	}
	if len(diseases.Diseases) != 1 || diseases.Diseases[0].Name != "Diabetes" {
		t.Fatalf("unexpected diseases: %+v", diseases.Diseases)
	}

	rec = performRequest(env.router, http.MethodGet, "/diseases/"+disease.ID+"/meals?category=breakfast", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list meals: expected status 200, got %d", rec.Code)
	}
	var meals struct {
		Meals []domain.Meal `json:"meals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &meals); err != nil {
		t.Fatalf("decode meals: %v", err)
	}
	if len(meals.Meals) != 1 || meals.Meals[0].Name != "Oatmeal" {
		t.Fatalf("unexpected meals: %+v", meals.Meals)
	}

	rec = performRequest(env.router, http.MethodGet, "/diseases/"+disease.ID+"/meals?category=brunch", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad category, got %d", rec.Code)
	}
}

func TestCatalogHandlerGetDisease_NotFound(t *testing.T) {
	env := setupTestEnv()

	rec := performRequest(env.router, http.MethodGet, "/diseases/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCatalogHandlerAdminCRUD_ForbiddenForUser(t *testing.T) {
	env := setupTestEnv()
	_, tokens := registerTestUser(t, env, "user@example.com")

	rec := performAuthedRequest(env.router, http.MethodPost, "/admin/diseases", tokens.AccessToken, map[string]any{
		"name": "Diabetes",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for non admin, got %d", rec.Code)
	}
}

func TestCatalogHandlerUpdateAndDeleteDisease(t *testing.T) {
	env := setupTestEnv()
	_, adminTokens := registerTestUser(t, env, "health@gmail.com")
	disease := createTestDisease(t, env, adminTokens.AccessToken, "Hypertension")

	rec := performAuthedRequest(env.router, http.MethodPut, "/admin/diseases/"+disease.ID, adminTokens.AccessToken, map[string]any{
		"name":        "Hypertension (updated)",
		"description": "updated",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update disease: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performAuthedRequest(env.router, http.MethodDelete, "/admin/diseases/"+disease.ID, adminTokens.AccessToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete disease: expected status 204, got %d", rec.Code)
	}

	rec = performAuthedRequest(env.router, http.MethodDelete, "/admin/diseases/"+disease.ID, adminTokens.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second delete, got %d", rec.Code)
	}
}

func TestCatalogHandlerCreateMeal_UnknownDisease(t *testing.T) {
	env := setupTestEnv()
	_, adminTokens := registerTestUser(t, env, "health@gmail.com")

	rec := performAuthedRequest(env.router, http.MethodPost, "/admin/meals", adminTokens.AccessToken, map[string]any{
		"disease_id": "missing",
		"category":   domain.CategoryLunch,
		"name":       "Salad",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown disease, got %d", rec.Code)
	}
}
