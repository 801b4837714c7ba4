// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionUsers      = "users"
	CollectionPosts      = "posts"
	CollectionBadges     = "badges"
	CollectionCategories = "categories"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Name       string
	Keys       bson.D
	Unique     bool
}

func (d IndexDefinition) model() mongo.IndexModel {
	opts := options.Index().SetName(d.Name)
	if d.Unique {
		opts = opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: d.Keys, Options: opts}
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent - calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		if _, err := db.Collection(idx.Collection).Indexes().CreateOne(ctx, idx.model()); err != nil {
			return fmt.Errorf("failed to create index %s on collection %s: %w", idx.Name, idx.Collection, err)
		}
	}
	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition
	indexes = append(indexes, GetUserIndexes()...)
	indexes = append(indexes, GetPostIndexes()...)
	indexes = append(indexes, GetCategoryIndexes()...)
	return indexes
}

// GetUserIndexes returns index definitions for the users collection.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// one user per identity-provider subject
			Collection: CollectionUsers,
			Name:       "idx_users_subject_unique",
			Keys:       bson.D{{Key: "subjectId", Value: 1}},
			Unique:     true,
		},
	}
}

// GetPostIndexes returns index definitions for the posts collection.
func GetPostIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionPosts,
			Name:       "idx_posts_type_created",
			Keys:       bson.D{{Key: "postType", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			// daily reward counts posts per owner since midnight
			Collection: CollectionPosts,
			Name:       "idx_posts_owner_created",
			Keys:       bson.D{{Key: "ownerSubjectId", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	}
}

// GetCategoryIndexes returns index definitions for the categories collection.
func GetCategoryIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionCategories,
			Name:       "idx_categories_post_type",
			Keys:       bson.D{{Key: "postType", Value: 1}},
		},
	}
}
