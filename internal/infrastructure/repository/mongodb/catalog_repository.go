package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/styx/internal/domain/badge"
	"github.com/lllypuk/styx/internal/domain/category"
)

// MongoBadgeRepository reads the badge shop
type MongoBadgeRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoBadgeRepository creates a badge repository
func NewMongoBadgeRepository(collection *mongo.Collection, logger *slog.Logger) *MongoBadgeRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoBadgeRepository{collection: collection, logger: logger}
}

type badgeDocument struct {
	ID       any    `bson:"_id"`
	ImageURL string `bson:"imageUrl"`
	Cost     int    `bson:"cost"`
}

// List returns every badge, cheapest first
func (r *MongoBadgeRepository) List(ctx context.Context) ([]badge.Badge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "cost", Value: 1}})
	return listDocuments(ctx, r.collection, bson.M{}, opts, func(doc *badgeDocument) (badge.Badge, error) {
		return badge.Badge{ID: idString(doc.ID), ImageURL: doc.ImageURL, Cost: doc.Cost}, nil
	}, r.logger)
}

// MongoCategoryRepository reads the post categories
type MongoCategoryRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoCategoryRepository creates a category repository
func NewMongoCategoryRepository(collection *mongo.Collection, logger *slog.Logger) *MongoCategoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoCategoryRepository{collection: collection, logger: logger}
}

type categoryDocument struct {
	ID       any    `bson:"_id"`
	PostType string `bson:"postType"`
	Title    string `bson:"title"`
	Caption  string `bson:"caption"`
	MediaURL string `bson:"mediaUrl"`
}

// List returns all categories ordered by postType
func (r *MongoCategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "postType", Value: 1}})
	return listDocuments(ctx, r.collection, bson.M{}, opts, func(doc *categoryDocument) (category.Category, error) {
		return category.Category{
			ID:       idString(doc.ID),
			PostType: doc.PostType,
			Title:    doc.Title,
			Caption:  doc.Caption,
			MediaURL: doc.MediaURL,
		}, nil
	}, r.logger)
}

// idString renders a catalog _id: seeded catalogs may use ObjectIDs or plain strings
func idString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case bson.ObjectID:
		return v.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
