package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"nutricare/internal/domain"
	"nutricare/internal/repository"
)

var (
	ErrDiseaseNotFound = errors.New("disease not found")
	ErrMealNotFound    = errors.New("meal not found")
	ErrInvalidCategory = errors.New("invalid meal category")
	ErrEmptyName       = errors.New("name is empty")
)

var mealCategories = map[string]bool{
	domain.CategoryBreakfast: true,
	domain.CategoryLunch:     true,
	domain.CategoryDinner:    true,
	domain.CategorySnacks:    true,
	domain.CategoryDrinks:    true,
	domain.CategoryVitamins:  true,
}

// CatalogService expone el catalogo de enfermedades y comidas, con
// mutaciones reservadas para admins.
type CatalogService struct {
	logger   *zap.Logger
	diseases repository.DiseaseRepository
	meals    repository.MealRepository
}

func NewCatalogService(logger *zap.Logger, diseases repository.DiseaseRepository, meals repository.MealRepository) *CatalogService {
	return &CatalogService{
		logger:   logger,
		diseases: diseases,
		meals:    meals,
	}
}

func (s *CatalogService) ListDiseases(ctx context.Context) ([]domain.Disease, error) {
	return s.diseases.List(ctx)
}

func (s *CatalogService) GetDisease(ctx context.Context, id string) (domain.Disease, error) {
	disease, err := s.diseases.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Disease{}, ErrDiseaseNotFound
	}
	return disease, err
}

// ListMeals devuelve las comidas de una enfermedad, opcionalmente
// filtradas por categoria.
func (s *CatalogService) ListMeals(ctx context.Context, diseaseID, category string) ([]domain.Meal, error) {
	if category != "" && !mealCategories[category] {
		return nil, ErrInvalidCategory
	}
	if _, err := s.GetDisease(ctx, diseaseID); err != nil {
		return nil, err
	}
	return s.meals.ListByDisease(ctx, diseaseID, category)
}

type DiseaseInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
	DidYouKnow  []string
}

func (s *CatalogService) CreateDisease(ctx context.Context, input DiseaseInput) (domain.Disease, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Disease{}, ErrEmptyName
	}
	disease := domain.Disease{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        input.Icon,
		Color:       input.Color,
		DidYouKnow:  input.DidYouKnow,
	}
	if err := s.diseases.Create(ctx, disease); err != nil {
		return domain.Disease{}, err
	}
	return disease, nil
}

func (s *CatalogService) UpdateDisease(ctx context.Context, id string, input DiseaseInput) (domain.Disease, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Disease{}, ErrEmptyName
	}
	disease := domain.Disease{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        input.Icon,
		Color:       input.Color,
		DidYouKnow:  input.DidYouKnow,
	}
	if err := s.diseases.Update(ctx, disease); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Disease{}, ErrDiseaseNotFound
		}
		return domain.Disease{}, err
	}
	return disease, nil
}

func (s *CatalogService) DeleteDisease(ctx context.Context, id string) error {
	err := s.diseases.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDiseaseNotFound
	}
	return err
}

type MealInput struct {
	DiseaseID        string
	Category         string
	Name             string
	Description      string
	Image            string
	PreparationSteps []string
	Nutrients        domain.Nutrients
	Benefits         []string
}

func (s *CatalogService) CreateMeal(ctx context.Context, input MealInput) (domain.Meal, error) {
	meal, err := s.validateMeal(ctx, input)
	if err != nil {
		return domain.Meal{}, err
	}
	meal.ID = uuid.NewString()
	if err := s.meals.Create(ctx, meal); err != nil {
		return domain.Meal{}, err
	}
	return meal, nil
}

func (s *CatalogService) UpdateMeal(ctx context.Context, id string, input MealInput) (domain.Meal, error) {
	meal, err := s.validateMeal(ctx, input)
	if err != nil {
		return domain.Meal{}, err
	}
	meal.ID = id
	if err := s.meals.Update(ctx, meal); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Meal{}, ErrMealNotFound
		}
		return domain.Meal{}, err
	}
	return meal, nil
}

func (s *CatalogService) DeleteMeal(ctx context.Context, id string) error {
	err := s.meals.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMealNotFound
	}
	return err
}

func (s *CatalogService) validateMeal(ctx context.Context, input MealInput) (domain.Meal, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Meal{}, ErrEmptyName
	}
	if !mealCategories[input.Category] {
		return domain.Meal{}, ErrInvalidCategory
	}
	if _, err := s.GetDisease(ctx, input.DiseaseID); err != nil {
		return domain.Meal{}, err
	}
	return domain.Meal{
		DiseaseID:        input.DiseaseID,
		Category:         input.Category,
		Name:             name,
		Description:      strings.TrimSpace(input.Description),
		Image:            input.Image,
		PreparationSteps: input.PreparationSteps,
		Nutrients:        input.Nutrients,
		Benefits:         input.Benefits,
	}, nil
}
