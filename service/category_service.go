package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
	"aqwesitod-shop/repository"
)

const msgCategoryNameTaken = "Category with this name already exists"

// CategoryService manages the categories products are filed under
type CategoryService struct {
	store     repository.Store
	validator *Validator
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store repository.Store, validator *Validator) *CategoryService {
	return &CategoryService{store: store, validator: validator}
}

// Ensure CategoryService implements CategoryServiceInterface
var _ CategoryServiceInterface = (*CategoryService)(nil)

func (s *CategoryService) Create(ctx context.Context, in *models.CategoryInput) (_ *models.Category, err error) {
	ctx, finish := startOp(ctx, "category.Create")
	defer finish(&err)

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.ValidateStruct(in); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}

	err = s.store.InTx(ctx, repository.TxOptions{Name: "category.Create", Relations: 1}, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertCategory(ctx, category)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Printf("⚠️ Create: Category name %q already taken", in.Name)
			return nil, apperror.Conflict(msgCategoryNameTaken)
		}
		return nil, storeError("Create", err)
	}

	log.Printf("✅ Create: Created category id=%s name=%q", category.ID, category.Name)
	return category, nil
}

// Update replaces the name, description and image of a category
func (s *CategoryService) Update(ctx context.Context, id string, in *models.CategoryInput) (_ *models.Category, err error) {
	ctx, finish := startOp(ctx, "category.Update", attribute.String("category.id", id))
	defer finish(&err)

	if !isUUID(id) {
		return nil, apperror.NotFound("Category", id)
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.ValidateStruct(in); err != nil {
		return nil, err
	}

	category := &models.Category{ID: id, Name: in.Name, Description: in.Description, ImageURL: in.ImageURL}

	opts := repository.TxOptions{Name: "category.Update", Relations: 1, RetrySafe: true}
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		return tx.UpdateCategory(ctx, category)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NotFound("Category", id)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperror.Conflict(msgCategoryNameTaken)
		}
		return nil, storeError("Update", err)
	}

	log.Printf("✅ Update: Updated category id=%s", id)
	return category, nil
}

// Delete removes a category and returns it. Products filed under it keep
// existing with no category.
func (s *CategoryService) Delete(ctx context.Context, id string) (_ *models.Category, err error) {
	ctx, finish := startOp(ctx, "category.Delete", attribute.String("category.id", id))
	defer finish(&err)

	if !isUUID(id) {
		return nil, apperror.NotFound("Category", id)
	}

	var deleted *models.Category
	opts := repository.TxOptions{Name: "category.Delete", Relations: 2, RetrySafe: true}
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if deleted, err = tx.GetCategory(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Category", id)
		}
		return nil, storeError("Delete", err)
	}

	log.Printf("✅ Delete: Deleted category id=%s", id)
	return deleted, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (_ *models.Category, err error) {
	ctx, finish := startOp(ctx, "category.Get", attribute.String("category.id", id))
	defer finish(&err)

	if !isUUID(id) {
		return nil, apperror.NotFound("Category", id)
	}

	category, err := s.store.Categories().GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Category", id)
		}
		return nil, storeError("Get", err)
	}
	return category, nil
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) (_ []models.Category, err error) {
	ctx, finish := startOp(ctx, "category.List")
	defer finish(&err)

	categories, err := s.store.Categories().ListCategories(ctx)
	if err != nil {
		return nil, storeError("List", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}
