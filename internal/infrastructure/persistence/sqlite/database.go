// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/recipebox/internal/domain/recipe"
	gormModels "github.com/alchemorsel/recipebox/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive and shared
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Run auto-migration
	if err := db.AutoMigrate(gormModels.Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase inserts a few starter recipes into an empty database
func SeedDatabase(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&gormModels.RecipeModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count recipes: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	drafts := []recipe.Draft{
		{
			Title:        "Classic Tomato Soup",
			Description:  "A simple weeknight soup",
			PrepTime:     10,
			CookTime:     25,
			Servings:     4,
			Ingredients:  []string{"1 kg ripe tomatoes", "1 onion", "2 tbsp butter", "500 ml vegetable stock"},
			Instructions: []string{"Soften the onion in butter", "Add tomatoes and stock", "Simmer 20 minutes and blend"},
			Tags:         []string{"soup", "vegetarian"},
		},
		{
			Title:        "Chicken Fried Rice",
			PrepTime:     15,
			CookTime:     15,
			Servings:     2,
			Ingredients:  []string{"2 cups cooked rice", "1 chicken breast", "2 eggs", "soy sauce"},
			Instructions: []string{"Fry the chicken until golden", "Scramble the eggs", "Fry the rice with everything and season"},
			Tags:         []string{"quick", "dinner"},
		},
		{
			Title:        "Overnight Oats",
			PrepTime:     5,
			Servings:     1,
			Ingredients:  []string{"1/2 cup oats", "1/2 cup milk", "1 tsp sugar", "berries"},
			Instructions: []string{"Mix oats, milk and sugar", "Refrigerate overnight", "Top with berries"},
			Tags:         []string{"breakfast"},
		},
	}

	ids := recipe.NewIDGenerator()
	now := time.Now().UTC()
	for i, draft := range drafts {
		r, err := recipe.NewRecipe(ids.Next(), draft, now.Add(time.Duration(i)*time.Second))
		if err != nil {
			return fmt.Errorf("invalid seed recipe %q: %w", draft.Title, err)
		}
		if err := db.WithContext(ctx).Create(gormModels.RecipeToModel(r)).Error; err != nil {
			return fmt.Errorf("failed to seed recipe %q: %w", draft.Title, err)
		}
	}

	return nil
}
