// Package mongodb implements the application repositories on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/styx/internal/domain/errs"
)

// HandleMongoError преобразует error MongoDB in доменную error.
// returns:
//   - nil if err == nil
//   - errs.ErrNotFound if документ not найден
//   - errs.ErrAlreadyExists if нарушен unique constraint
//   - wrapped error for остальных случаев
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// replaceVersioned overwrites the document only if it is still at version.
// doc must already carry version+1.
func replaceVersioned(ctx context.Context, coll *mongo.Collection, id string, version int64, doc any, resourceType string) error {
	res, err := coll.ReplaceOne(ctx, versionFilter(id, version), doc)
	if err != nil {
		return HandleMongoError(err, resourceType)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return missOrConflict(ctx, coll, id, resourceType)
}

// deleteVersioned removes the document only if it is still at version.
func deleteVersioned(ctx context.Context, coll *mongo.Collection, id string, version int64, resourceType string) error {
	res, err := coll.DeleteOne(ctx, versionFilter(id, version))
	if err != nil {
		return HandleMongoError(err, resourceType)
	}
	if res.DeletedCount == 1 {
		return nil
	}
	return missOrConflict(ctx, coll, id, resourceType)
}

// versionFilter matches id at version. Documents written before versioning
// have no version field and are read as version 1.
func versionFilter(id string, version int64) bson.M {
	if version <= 1 {
		return bson.M{"_id": id, "version": bson.M{"$in": bson.A{int64(1), nil}}}
	}
	return bson.M{"_id": id, "version": version}
}

// missOrConflict разбирает промах условной записи: документа нет или версия ушла вперед
func missOrConflict(ctx context.Context, coll *mongo.Collection, id, resourceType string) error {
	count, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return HandleMongoError(err, resourceType)
	}
	if count == 0 {
		return errs.ErrNotFound
	}
	return errs.ErrConcurrentModification
}
