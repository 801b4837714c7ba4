package post

import (
	"fmt"

	"github.com/lllypuk/styx/internal/domain/errs"
)

var (
	// ErrPostNotFound возникает когда пост не найден
	ErrPostNotFound = fmt.Errorf("post not found: %w", errs.ErrNotFound)

	// ErrNoPosts is returned when a category has no posts at all
	ErrNoPosts = fmt.Errorf("no posts found: %w", errs.ErrNotFound)
)
