package repository

import (
	"context"
	"fmt"

	"dungeon-master/internal/model"
)

// ClassFeatureRepository reads the class feature catalog.
type ClassFeatureRepository struct {
	db DBTX
}

// NewClassFeatureRepository creates a new ClassFeatureRepository instance.
func NewClassFeatureRepository(db DBTX) *ClassFeatureRepository {
	return &ClassFeatureRepository{db: db}
}

// FeaturesFor returns the features a class unlocks at exactly level, in insertion order.
// Class names match case-insensitively.
func (r *ClassFeatureRepository) FeaturesFor(ctx context.Context, className string, level int) ([]*model.ClassFeature, error) {
	const query = `
		SELECT id, class_name, level, feature_name, description, feature_type
		FROM class_features
		WHERE LOWER(class_name) = LOWER($1) AND level = $2
		ORDER BY id
	`
	return r.list(ctx, query, className, level)
}

// ListByClass returns all features of a class ordered by level.
func (r *ClassFeatureRepository) ListByClass(ctx context.Context, className string) ([]*model.ClassFeature, error) {
	const query = `
		SELECT id, class_name, level, feature_name, description, feature_type
		FROM class_features
		WHERE LOWER(class_name) = LOWER($1)
		ORDER BY level, id
	`
	return r.list(ctx, query, className)
}

func (r *ClassFeatureRepository) list(ctx context.Context, query string, args ...any) ([]*model.ClassFeature, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get class features: %w", err)
	}
	defer rows.Close()

	var features []*model.ClassFeature
	for rows.Next() {
		var f model.ClassFeature
		if err := rows.Scan(&f.ID, &f.ClassName, &f.Level, &f.FeatureName, &f.Description, &f.FeatureType); err != nil {
			return nil, fmt.Errorf("failed to scan class feature: %w", err)
		}
		features = append(features, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class features: %w", err)
	}

	return features, nil
}

// Seed inserts the given features, ignoring ones that already exist.
// Returns how many rows were actually inserted.
func (r *ClassFeatureRepository) Seed(ctx context.Context, features []*model.ClassFeature) (int, error) {
	const query = `
		INSERT INTO class_features (class_name, level, feature_name, description, feature_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (class_name, level, feature_name) DO NOTHING
	`

	inserted := 0
	for _, f := range features {
		result, err := r.db.Exec(ctx, query, f.ClassName, f.Level, f.FeatureName, f.Description, f.FeatureType)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed feature %s/%s: %w", f.ClassName, f.FeatureName, err)
		}
		inserted += int(result.RowsAffected())
	}
	return inserted, nil
}
