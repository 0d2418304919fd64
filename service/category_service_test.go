package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
	"aqwesitod-shop/repository/memstore"
)

func TestCategoryLifecycle(t *testing.T) {
	store := memstore.New()
	categories := NewCategoryService(store, NewValidator())
	products := NewProductService(store, NewValidator())
	ctx := context.Background()

	tees, err := categories.Create(ctx, &models.CategoryInput{Name: " Tees ", ImageURL: "https://cdn.example.com/tees.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Tees", tees.Name)

	_, err = categories.Create(ctx, &models.CategoryInput{Name: "Tees"})
	appErr := requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, msgCategoryNameTaken, appErr.Message)

	hoodies, err := categories.Create(ctx, &models.CategoryInput{Name: "Hoodies"})
	require.NoError(t, err)

	_, err = categories.Update(ctx, hoodies.ID, &models.CategoryInput{Name: "Tees"})
	requireKind(t, err, apperror.KindConflict)

	renamed, err := categories.Update(ctx, hoodies.ID, &models.CategoryInput{Name: "Sweatshirts", Description: "Warm"})
	require.NoError(t, err)
	assert.Equal(t, "Sweatshirts", renamed.Name)

	list, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Sweatshirts", list[0].Name, "ordered by name")

	in := hoodieInput()
	in.CategoryID = &tees.ID
	product, err := products.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, product.Category)

	deleted, err := categories.Delete(ctx, tees.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tees", deleted.Name)

	got, err := products.Get(ctx, product.ID)
	require.NoError(t, err, "products outlive their category")
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)

	_, err = categories.Get(ctx, tees.ID)
	requireKind(t, err, apperror.KindNotFound)
	_, err = categories.Delete(ctx, tees.ID)
	requireKind(t, err, apperror.KindNotFound)
}

func TestCategoryValidation(t *testing.T) {
	categories := NewCategoryService(memstore.New(), NewValidator())
	ctx := context.Background()

	_, err := categories.Create(ctx, &models.CategoryInput{Name: "", ImageURL: "nope"})
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "imageUrl")

	_, err = categories.Update(ctx, "f2a0d3c4-5b6e-4f70-8a91-b2c3d4e5f607", &models.CategoryInput{Name: "Caps"})
	requireKind(t, err, apperror.KindNotFound)
}
