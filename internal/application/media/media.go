// Package media stores user uploads in an object store and hands back a public URL.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/errs"
)

// sniffLen matches the header size mimetype inspects by default
const sniffLen = 3072

// ErrObjectNotFound is returned when a stored object does not exist
var ErrObjectNotFound = fmt.Errorf("media object not found: %w", errs.ErrNotFound)

// Object is one upload on its way to the store
type Object struct {
	Key         string
	ContentType string
	Body        io.Reader
}

// ObjectStore persists uploads and returns the URL clients fetch them from
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// ObjectSource streams a stored object back; only stores served by this API implement it
type ObjectSource interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// UploadCommand - загрузка файла пользователя
type UploadCommand struct {
	SubjectID string
	Profile   string // optional sub-folder
	FileName  string
	Content   io.Reader
}

// UploadResult is what the client gets back
type UploadResult struct {
	Key         string
	URL         string
	ContentType string
}

// UploadUseCase writes an upload under {subject}/[{profile}/]{fileName}.
// The content type comes from the bytes; whatever the client claimed is ignored.
type UploadUseCase struct {
	store  ObjectStore
	logger *slog.Logger
}

// NewUploadUseCase создает UploadUseCase
func NewUploadUseCase(store ObjectStore, logger *slog.Logger) *UploadUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadUseCase{store: store, logger: logger}
}

// Execute выполняет загрузку
func (uc *UploadUseCase) Execute(ctx context.Context, cmd UploadCommand) (UploadResult, error) {
	if err := errors.Join(
		appcore.ValidateRequired("subjectId", cmd.SubjectID),
		appcore.ValidateRequired("fileName", cmd.FileName),
	); err != nil {
		return UploadResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if cmd.Content == nil {
		return UploadResult{}, fmt.Errorf("validation failed: %w", appcore.NewValidationError("file", "is required"))
	}

	key, err := ObjectKey(cmd.SubjectID, cmd.Profile, cmd.FileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("validation failed: %w", err)
	}

	br := bufio.NewReaderSize(cmd.Content, sniffLen)
	header, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return UploadResult{}, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := mimetype.Detect(header).String()

	url, err := uc.store.Put(ctx, Object{Key: key, ContentType: contentType, Body: br})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to store media: %w", err)
	}

	uc.logger.InfoContext(ctx, "media uploaded",
		slog.String("key", key),
		slog.String("content_type", contentType),
	)
	return UploadResult{Key: key, URL: url, ContentType: contentType}, nil
}

// ObjectKey builds {subject}/[{profile}/]{fileName} keeping only the last element of client-supplied names
func ObjectKey(subjectID, profile, fileName string) (string, error) {
	name := cleanSegment(fileName)
	if name == "" {
		return "", appcore.NewValidationError("fileName", "is invalid")
	}
	parts := []string{subjectID}
	if p := cleanSegment(profile); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(append(parts, name), "/"), nil
}

func cleanSegment(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	if s == "" {
		return ""
	}
	base := path.Base(s)
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return base
}

// DownloadUseCase streams objects kept in a store served by this API
type DownloadUseCase struct {
	source ObjectSource
}

// NewDownloadUseCase создает DownloadUseCase
func NewDownloadUseCase(source ObjectSource) *DownloadUseCase {
	return &DownloadUseCase{source: source}
}

// Execute opens the object; the caller closes the reader
func (uc *DownloadUseCase) Execute(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := appcore.ValidateRequired("key", key); err != nil {
		return nil, "", fmt.Errorf("validation failed: %w", err)
	}
	return uc.source.Open(ctx, key)
}
