package db

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

type templateSeed struct {
	Name        string
	Description string
	Settings    map[string]any
}

var defaultTemplates = []templateSeed{
	{
		Name:        "Documentary Episode",
		Description: "Long-form episode with interviews, b-roll and narration in a three-act arc.",
		Settings: map[string]any{
			"structure":            "3-act",
			"targetDurationMinute": 22,
			"blockTypes":           []string{"interview", "b-roll", "narration", "montage"},
			"factCheck":            true,
		},
	},
	{
		Name:        "Interview Series",
		Description: "Guest-driven episode built around one or two sit-down interviews.",
		Settings: map[string]any{
			"structure":            "4-act",
			"targetDurationMinute": 30,
			"blockTypes":           []string{"interview", "b-roll"},
			"factCheck":            true,
		},
	},
	{
		Name:        "Short Explainer",
		Description: "Under five minutes, narration-led, one idea.",
		Settings: map[string]any{
			"structure":            "story-circle",
			"targetDurationMinute": 5,
			"blockTypes":           []string{"narration", "b-roll"},
			"factCheck":            true,
		},
	},
}

// SeedTemplates inserts the built-in project templates; existing names are left alone.
func SeedTemplates(ctx context.Context, db *gorm.DB) error {
	for _, t := range defaultTemplates {
		raw, err := json.Marshal(t.Settings)
		if err != nil {
			return err
		}
		row := &types.ProjectTemplate{
			Name:            t.Name,
			Description:     t.Description,
			DefaultSettings: datatypes.JSON(raw),
		}
		if err := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(row).Error; err != nil {
			return fmt.Errorf("seed template %q: %w", t.Name, err)
		}
	}
	return nil
}
