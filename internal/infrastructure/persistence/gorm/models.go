// Package gorm provides the database-backed recipe and meal plan stores
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeModel represents the GORM model for recipes. Embedded media is
// never stored, so it has no columns.
type RecipeModel struct {
	ID           string      `gorm:"type:varchar(32);primaryKey"`
	Title        string      `gorm:"type:varchar(255);not null;index"`
	Description  string      `gorm:"type:text"`
	PrepTime     int         `gorm:"column:prep_time_minutes;default:0"`
	CookTime     int         `gorm:"column:cook_time_minutes;default:0"`
	Servings     int         `gorm:"default:1"`
	Ingredients  StringSlice `gorm:"type:json"`
	Instructions StringSlice `gorm:"type:json"`
	Tags         StringSlice `gorm:"type:json"`
	Source       string      `gorm:"type:varchar(50);default:'manual'"`
	SourceURL    string      `gorm:"column:source_url;type:text"`
	Favorite     bool        `gorm:"default:false;index"`
	Notes        string      `gorm:"type:text"`
	CreatedAt    time.Time   `gorm:"index"`
	UpdatedAt    time.Time
}

// MealPlanModel represents one filled slot of the weekly plan
type MealPlanModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Day         string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_meal_plans_slot"`
	Meal        string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_meal_plans_slot"`
	RecipeID    string    `gorm:"column:recipe_id;type:varchar(32);not null;index"`
	RecipeTitle string    `gorm:"column:recipe_title;type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// BeforeCreate hook for MealPlanModel
func (m *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (RecipeModel) TableName() string {
	return "recipes"
}

func (MealPlanModel) TableName() string {
	return "meal_plans"
}

// Models lists every model for AutoMigrate
func Models() []interface{} {
	return []interface{}{&RecipeModel{}, &MealPlanModel{}}
}
