package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"aqwesitod-shop/models"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	q querier
}

// NewCategoryRepository binds the repository to a pool or an open transaction
func NewCategoryRepository(q querier) *CategoryRepository {
	return &CategoryRepository{q: q}
}

var (
	_ CategoryReader = (*CategoryRepository)(nil)
	_ CategoryTx     = (*CategoryRepository)(nil)
)

// InsertCategory returns an ErrDuplicate-wrapping error when the name is taken
func (r *CategoryRepository) InsertCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.ImageURL).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Printf("❌ InsertCategory: Error inserting category name=%s: %v", c.Name, err)
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, image_url = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.ImageURL).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		log.Printf("❌ UpdateCategory: Error updating category id=%s: %v", c.ID, err)
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory removes the category; products referencing it keep existing with no category
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.q.QueryRow(ctx, `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM categories
		WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		log.Printf("❌ ListCategories: Error querying categories: %v", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Category])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}
