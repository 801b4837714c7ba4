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
	postdomain "github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// MongoPostRepository stores each post with its whole comment thread as one document
type MongoPostRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// PostRepoOption configures MongoPostRepository.
type PostRepoOption func(*MongoPostRepository)

// WithPostRepoLogger sets the logger for post repository.
func WithPostRepoLogger(logger *slog.Logger) PostRepoOption {
	return func(r *MongoPostRepository) {
		r.logger = logger
	}
}

// NewMongoPostRepository creates a new post repository
func NewMongoPostRepository(collection *mongo.Collection, opts ...PostRepoOption) *MongoPostRepository {
	r := &MongoPostRepository{
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID loads one post
func (r *MongoPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*postdomain.Post, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc postDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find post",
				slog.String("post_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "post")
	}

	return documentToPost(&doc)
}

// FindByType returns the posts of one category, newest first
func (r *MongoPostRepository) FindByType(ctx context.Context, postType string) ([]*postdomain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return listDocuments(ctx, r.collection, bson.M{"postType": postType}, opts, documentToPost, r.logger)
}

// CountByOwnerSince counts posts created by owner at or after since
func (r *MongoPostRepository) CountByOwnerSince(ctx context.Context, owner string, since time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"ownerSubjectId": owner,
		"createdAt":      bson.M{"$gte": since.UTC()},
	})
	if err != nil {
		return 0, HandleMongoError(err, "post")
	}
	return count, nil
}

// Insert stores a new post at version 1
func (r *MongoPostRepository) Insert(ctx context.Context, p *postdomain.Post) error {
	if p == nil {
		return errs.ErrInvalidInput
	}

	if _, err := r.collection.InsertOne(ctx, postToDocument(p, 1)); err != nil {
		r.logger.ErrorContext(ctx, "failed to insert post",
			slog.String("post_id", p.ID().String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "post")
	}

	p.MarkPersisted(1)
	return nil
}

// Replace overwrites the whole post if it is still at p.Version()
func (r *MongoPostRepository) Replace(ctx context.Context, p *postdomain.Post) error {
	if p == nil {
		return errs.ErrInvalidInput
	}

	next := p.Version() + 1
	if err := replaceVersioned(ctx, r.collection, p.ID().String(), p.Version(), postToDocument(p, next), "post"); err != nil {
		return err
	}

	p.MarkPersisted(next)
	return nil
}

// Delete removes the post if it is still at version
func (r *MongoPostRepository) Delete(ctx context.Context, id uuid.UUID, version int64) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}
	return deleteVersioned(ctx, r.collection, id.String(), version, "post")
}

type postDocument struct {
	ID             string            `bson:"_id"`
	PostType       string            `bson:"postType"`
	OwnerSubjectID string            `bson:"ownerSubjectId"`
	AuthorName     string            `bson:"authorName"`
	AuthorEmail    string            `bson:"authorEmail"`
	Caption        string            `bson:"caption"`
	MediaURL       string            `bson:"mediaUrl"`
	Likes          []string          `bson:"likes"`
	LikesCount     int               `bson:"likesCount"`
	CreatedAt      time.Time         `bson:"createdAt"`
	Comments       []commentDocument `bson:"comments"`
	Version        int64             `bson:"version"`
}

// commentDocument is shared by comments and replies; a reply always stores an empty replies array
type commentDocument struct {
	ID             string            `bson:"commentId"`
	OwnerSubjectID *string           `bson:"ownerSubjectId"`
	AuthorName     string            `bson:"authorName"`
	Text           string            `bson:"text"`
	Email          *string           `bson:"email"`
	Likes          []string          `bson:"likes"`
	LikesCount     int               `bson:"likesCount"`
	CreatedAt      time.Time         `bson:"createdAt"`
	State          string            `bson:"state,omitempty"`
	Replies        []commentDocument `bson:"replies"`
}

func postToDocument(p *postdomain.Post, version int64) postDocument {
	comments := make([]commentDocument, 0, len(p.Comments()))
	for _, c := range p.Comments() {
		comments = append(comments, commentToDocument(c))
	}

	return postDocument{
		ID:             p.ID().String(),
		PostType:       p.PostType(),
		OwnerSubjectID: p.OwnerSubjectID(),
		AuthorName:     p.AuthorName(),
		AuthorEmail:    p.AuthorEmail(),
		Caption:        p.Caption(),
		MediaURL:       p.MediaURL(),
		Likes:          p.Likes(),
		LikesCount:     p.LikesCount(),
		CreatedAt:      p.CreatedAt(),
		Comments:       comments,
		Version:        version,
	}
}

func commentToDocument(c *postdomain.Comment) commentDocument {
	doc := commentDocument{
		ID:             c.ID().String(),
		OwnerSubjectID: c.OwnerSubjectID(),
		AuthorName:     c.AuthorName(),
		Text:           c.Text(),
		Email:          c.Email(),
		Likes:          c.Likes(),
		LikesCount:     c.LikesCount(),
		CreatedAt:      c.CreatedAt(),
		State:          string(c.State()),
		Replies:        make([]commentDocument, 0, len(c.Replies())),
	}
	if !c.IsReply() {
		for _, reply := range c.Replies() {
			doc.Replies = append(doc.Replies, commentToDocument(reply))
		}
	}
	return doc
}

func documentToPost(doc *postDocument) (*postdomain.Post, error) {
	id, err := uuid.ParseUUID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", doc.ID, err)
	}

	comments := make([]*postdomain.Comment, 0, len(doc.Comments))
	for i := range doc.Comments {
		c, convErr := documentToComment(&doc.Comments[i], false)
		if convErr != nil {
			return nil, convErr
		}
		comments = append(comments, c)
	}

	version := doc.Version
	if version == 0 {
		version = 1
	}

	return postdomain.Reconstruct(
		id,
		doc.PostType,
		doc.OwnerSubjectID,
		doc.AuthorName,
		doc.AuthorEmail,
		doc.Caption,
		doc.MediaURL,
		doc.Likes,
		doc.CreatedAt,
		comments,
		version,
	), nil
}

func documentToComment(doc *commentDocument, isReply bool) (*postdomain.Comment, error) {
	id, err := uuid.ParseUUID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment id %q: %w", doc.ID, err)
	}

	var replies []*postdomain.Comment
	if !isReply {
		replies = make([]*postdomain.Comment, 0, len(doc.Replies))
		for i := range doc.Replies {
			reply, convErr := documentToComment(&doc.Replies[i], true)
			if convErr != nil {
				return nil, convErr
			}
			replies = append(replies, reply)
		}
	}

	return postdomain.ReconstructComment(
		id,
		doc.OwnerSubjectID,
		doc.AuthorName,
		doc.Text,
		doc.Email,
		doc.Likes,
		doc.CreatedAt,
		postdomain.NodeState(doc.State),
		isReply,
		replies,
	), nil
}
