package httphandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/application/media"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// UploadResponse carries the public URL of the stored file.
type UploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// ObjectDownloader streams a stored object.
type ObjectDownloader interface {
	Execute(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// MediaHandler handles uploads and, for stores served by this API, downloads.
type MediaHandler struct {
	upload   appcore.UseCase[media.UploadCommand, media.UploadResult]
	download ObjectDownloader
	maxBytes int64
}

// MediaHandlerOption configures MediaHandler.
type MediaHandlerOption func(*MediaHandler)

// WithDownloads enables GET /media/files/*. Leave it out when objects are served elsewhere (S3).
func WithDownloads(d ObjectDownloader) MediaHandlerOption {
	return func(h *MediaHandler) {
		h.download = d
	}
}

// WithMaxUploadBytes rejects larger files with 400.
func WithMaxUploadBytes(n int64) MediaHandlerOption {
	return func(h *MediaHandler) {
		h.maxBytes = n
	}
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(upload appcore.UseCase[media.UploadCommand, media.UploadResult], opts ...MediaHandlerOption) *MediaHandler {
	h := &MediaHandler{upload: upload}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers media routes with the router.
func (h *MediaHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/media/upload", h.Upload)
	if h.download != nil {
		r.Public().GET("/media/files/*", h.Download)
	}
}

// Upload handles POST /api/media/upload (multipart: file, optional profile).
func (h *MediaHandler) Upload(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "No file found in the request.")
		}
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid multipart form data.")
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("File exceeds %d bytes.", h.maxBytes))
	}

	file, err := fh.Open()
	if err != nil {
		return httpserver.RespondError(c, fmt.Errorf("failed to open upload: %w", err))
	}
	defer file.Close()

	result, err := h.upload.Execute(c.Request().Context(), media.UploadCommand{
		SubjectID: subject,
		Profile:   c.FormValue("profile"),
		FileName:  fh.Filename,
		Content:   file,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, UploadResponse{Message: "File uploaded successfully.", URL: result.URL})
}

// Download handles GET /api/media/files/*.
func (h *MediaHandler) Download(c echo.Context) error {
	key := c.Param("*")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}

	body, contentType, err := h.download.Execute(c.Request().Context(), key)
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	defer body.Close()

	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, body)
}
