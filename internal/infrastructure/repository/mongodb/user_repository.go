package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/styx/internal/domain/errs"
	userdomain "github.com/lllypuk/styx/internal/domain/user"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// MongoUserRepository realizuet userapp.Repository (application layer interface)
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserRepoOption configures MongoUserRepository.
type UserRepoOption func(*MongoUserRepository)

// WithUserRepoLogger sets the logger for user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MongoUserRepository) {
		r.logger = logger
	}
}

// NewMongoUserRepository creates New MongoDB User Repository
func NewMongoUserRepository(collection *mongo.Collection, opts ...UserRepoOption) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindBySubjectID finds the user registered for the token subject. Exact, case-sensitive match.
func (r *MongoUserRepository) FindBySubjectID(ctx context.Context, subjectID string) (*userdomain.User, error) {
	if subjectID == "" {
		return nil, errs.ErrInvalidInput
	}

	// limit 2: a second match means the unique index is missing
	cursor, err := r.collection.Find(ctx, bson.M{"subjectId": subjectID},
		options.Find().SetLimit(2).SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to find user by subject",
			slog.String("subject_id", subjectID),
			slog.String("error", err.Error()),
		)
		return nil, HandleMongoError(err, "user")
	}

	var docs []userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, HandleMongoError(err, "user")
	}
	if len(docs) == 0 {
		return nil, errs.ErrNotFound
	}
	if len(docs) > 1 {
		r.logger.WarnContext(ctx, "duplicate users for subject, using the oldest",
			slog.String("subject_id", subjectID),
		)
	}

	return r.documentToUser(&docs[0])
}

// Insert stores a new user at version 1
func (r *MongoUserRepository) Insert(ctx context.Context, user *userdomain.User) error {
	if user == nil {
		return errs.ErrInvalidInput
	}

	doc := r.userToDocument(user, 1)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.logger.ErrorContext(ctx, "failed to insert user",
				slog.String("subject_id", user.SubjectID()),
				slog.String("error", err.Error()),
			)
		}
		return HandleMongoError(err, "user")
	}

	user.MarkPersisted(1)
	return nil
}

// Replace overwrites the document if it is still at user.Version()
func (r *MongoUserRepository) Replace(ctx context.Context, user *userdomain.User) error {
	if user == nil {
		return errs.ErrInvalidInput
	}

	next := user.Version() + 1
	err := replaceVersioned(ctx, r.collection, user.ID().String(), user.Version(), r.userToDocument(user, next), "user")
	if err != nil {
		if !errors.Is(err, errs.ErrConcurrentModification) && !errors.Is(err, errs.ErrNotFound) {
			r.logger.ErrorContext(ctx, "failed to replace user",
				slog.String("user_id", user.ID().String()),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	user.MarkPersisted(next)
	return nil
}

// userDocument represents the structure dokumenta in MongoDB
type userDocument struct {
	ID          string    `bson:"_id"`
	SubjectID   string    `bson:"subjectId"`
	Email       string    `bson:"email"`
	DisplayName string    `bson:"displayName"`
	Bio         string    `bson:"bio"`
	Habits      string    `bson:"habits"`
	PhotoURL    string    `bson:"photoUrl"`
	Coins       int       `bson:"coins"`
	Badges      []string  `bson:"badges"`
	CreatedAt   time.Time `bson:"createdAt"`
	Version     int64     `bson:"version"`
}

func (r *MongoUserRepository) userToDocument(user *userdomain.User, version int64) userDocument {
	return userDocument{
		ID:          user.ID().String(),
		SubjectID:   user.SubjectID(),
		Email:       user.Email(),
		DisplayName: user.DisplayName(),
		Bio:         user.Bio(),
		Habits:      user.Habits(),
		PhotoURL:    user.PhotoURL(),
		Coins:       user.Coins(),
		Badges:      user.Badges(),
		CreatedAt:   user.CreatedAt(),
		Version:     version,
	}
}

func (r *MongoUserRepository) documentToUser(doc *userDocument) (*userdomain.User, error) {
	id, err := uuid.ParseUUID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", doc.ID, err)
	}

	// документы без version считаются первой версией
	version := doc.Version
	if version == 0 {
		version = 1
	}

	return userdomain.Reconstruct(
		id,
		doc.SubjectID,
		doc.Email,
		doc.DisplayName,
		doc.Bio,
		doc.Habits,
		doc.PhotoURL,
		doc.Coins,
		doc.Badges,
		doc.CreatedAt,
		version,
	), nil
}
