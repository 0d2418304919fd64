package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"aqwesitod-shop/app/controller"
	"aqwesitod-shop/app/router"
	"aqwesitod-shop/config"
	"aqwesitod-shop/db"
	"aqwesitod-shop/pricing"
	"aqwesitod-shop/repository"
	"aqwesitod-shop/repository/memstore"
	"aqwesitod-shop/service"
)

// App holds the HTTP handler and the store it serves from.
// The caller must Close the store at shutdown.
type App struct {
	Handler http.Handler
	Store   repository.Store
}

// Initialize opens the store selected by cfg and wires services, controllers and routes
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	validator := service.NewValidator()
	productService := service.NewProductService(store, validator)
	cartService := service.NewCartService(store, pricing.NewEngine())
	categoryService := service.NewCategoryService(store, validator)

	controllers := &router.Controllers{
		Product:  controller.NewProductController(productService),
		Cart:     controller.NewCartController(cartService),
		Category: controller.NewCategoryController(categoryService),
	}

	return &App{Handler: router.SetupRoutes(controllers), Store: store}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.StoreDriver == "memory" {
		log.Printf("⚠️ Using in-memory store; data is lost on restart")
		return memstore.New(), nil
	}

	pool, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	budget := db.NewTxBudget(cfg)
	return repository.NewPostgresStore(pool, budget), nil
}
