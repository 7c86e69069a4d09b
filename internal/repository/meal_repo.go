package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricare/internal/domain"
)

type MealRepository interface {
	Create(ctx context.Context, meal domain.Meal) error
	Update(ctx context.Context, meal domain.Meal) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Meal, error)
	ListByDisease(ctx context.Context, diseaseID, category string) ([]domain.Meal, error)
	Count(ctx context.Context) (int64, error)
}

type PgMealRepository struct {
	pool *pgxpool.Pool
}

func NewPgMealRepository(pool *pgxpool.Pool) *PgMealRepository {
	return &PgMealRepository{pool: pool}
}

func (r *PgMealRepository) Create(ctx context.Context, meal domain.Meal) error {
	const query = `
		INSERT INTO meals (id, disease_id, category, name, description, image,
			preparation_steps, calories, protein, carbs, fats, benefits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		meal.ID,
		meal.DiseaseID,
		meal.Category,
		meal.Name,
		meal.Description,
		meal.Image,
		meal.PreparationSteps,
		meal.Nutrients.Calories,
		meal.Nutrients.Protein,
		meal.Nutrients.Carbs,
		meal.Nutrients.Fats,
		meal.Benefits,
	)
	return err
}

func (r *PgMealRepository) Update(ctx context.Context, meal domain.Meal) error {
	const query = `
		UPDATE meals
		SET disease_id = $2, category = $3, name = $4, description = $5, image = $6,
			preparation_steps = $7, calories = $8, protein = $9, carbs = $10,
			fats = $11, benefits = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		meal.ID,
		meal.DiseaseID,
		meal.Category,
		meal.Name,
		meal.Description,
		meal.Image,
		meal.PreparationSteps,
		meal.Nutrients.Calories,
		meal.Nutrients.Protein,
		meal.Nutrients.Carbs,
		meal.Nutrients.Fats,
		meal.Benefits,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMealRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMealRepository) GetByID(ctx context.Context, id string) (domain.Meal, error) {
	const query = `
		SELECT id, disease_id, category, name, description, image,
			preparation_steps, calories, protein, carbs, fats, benefits
		FROM meals
		WHERE id = $1
	`
	var m domain.Meal
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.DiseaseID,
		&m.Category,
		&m.Name,
		&m.Description,
		&m.Image,
		&m.PreparationSteps,
		&m.Nutrients.Calories,
		&m.Nutrients.Protein,
		&m.Nutrients.Carbs,
		&m.Nutrients.Fats,
		&m.Benefits,
	)
	return m, err
}

func (r *PgMealRepository) ListByDisease(ctx context.Context, diseaseID, category string) ([]domain.Meal, error) {
	query := `
		SELECT id, disease_id, category, name, description, image,
			preparation_steps, calories, protein, carbs, fats, benefits
		FROM meals
		WHERE disease_id = $1
		ORDER BY category ASC, name ASC
	`
	args := []interface{}{diseaseID}
	if category != "" {
		query = `
			SELECT id, disease_id, category, name, description, image,
				preparation_steps, calories, protein, carbs, fats, benefits
			FROM meals
			WHERE disease_id = $1 AND category = $2
			ORDER BY name ASC
		`
		args = append(args, category)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []domain.Meal
	for rows.Next() {
		var m domain.Meal
		if err := rows.Scan(
			&m.ID,
			&m.DiseaseID,
			&m.Category,
			&m.Name,
			&m.Description,
			&m.Image,
			&m.PreparationSteps,
			&m.Nutrients.Calories,
			&m.Nutrients.Protein,
			&m.Nutrients.Carbs,
			&m.Nutrients.Fats,
			&m.Benefits,
		); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return meals, nil
}

func (r *PgMealRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM meals`).Scan(&n)
	return n, err
}
