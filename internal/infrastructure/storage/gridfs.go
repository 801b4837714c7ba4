// Package storage holds the media.ObjectStore backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/styx/internal/application/media"
)

const (
	// DefaultBucket is the GridFS bucket for uploads
	DefaultBucket = "media-files"

	// FilesRoute is where the API serves GridFS objects back
	FilesRoute = "/api/media/files/"

	contentTypeKey = "contentType"
)

// GridFSStore keeps uploads in MongoDB. Re-uploading a key stores a new revision; reads return the newest.
type GridFSStore struct {
	bucket  *mongo.GridFSBucket
	baseURL string
	logger  *slog.Logger
}

// NewGridFSStore creates a store on db. baseURL is the public origin of this API.
func NewGridFSStore(db *mongo.Database, bucketName, baseURL string, logger *slog.Logger) *GridFSStore {
	if bucketName == "" {
		bucketName = DefaultBucket
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GridFSStore{
		bucket:  db.GridFSBucket(options.GridFSBucket().SetName(bucketName)),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Put uploads the object and returns its public URL
func (s *GridFSStore) Put(ctx context.Context, obj media.Object) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{contentTypeKey: obj.ContentType})
	id, err := s.bucket.UploadFromStream(ctx, obj.Key, obj.Body, opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload %q: %w", obj.Key, err)
	}

	s.logger.DebugContext(ctx, "media stored",
		slog.String("key", obj.Key),
		slog.String("file_id", id.Hex()),
	)
	return s.baseURL + FilesRoute + EscapeKey(obj.Key), nil
}

// Open streams the newest revision of key
func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(ctx, key)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return nil, "", media.ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("gridfs open %q: %w", key, err)
	}

	contentType := "application/octet-stream"
	if file := stream.GetFile(); file != nil && file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup(contentTypeKey).StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}
	return stream, contentType, nil
}

// EscapeKey escapes each path segment of key for use in a URL
func EscapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var (
	_ media.ObjectStore  = (*GridFSStore)(nil)
	_ media.ObjectSource = (*GridFSStore)(nil)
)
