package mocks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// PostRepository is an in-memory versioned store for post aggregates
type PostRepository struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*post.Post

	ConflictsToInject int
	FindErr           error
	ReplaceErr        error
	ReplaceCalls      int
}

// NewPostRepository creates an empty repository
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[uuid.UUID]*post.Post)}
}

// Add stores p, version 1 when unset
func (m *PostRepository) Add(p *post.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Version() == 0 {
		p.MarkPersisted(1)
	}
	m.posts[p.ID()] = ClonePost(p)
}

// Get returns the stored snapshot or nil
func (m *PostRepository) Get(id uuid.UUID) *post.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil
	}
	return ClonePost(p)
}

func (m *PostRepository) Insert(_ context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID()]; ok {
		return errs.ErrAlreadyExists
	}
	p.MarkPersisted(1)
	m.posts[p.ID()] = ClonePost(p)
	return nil
}

func (m *PostRepository) FindByID(_ context.Context, id uuid.UUID) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return ClonePost(p), nil
}

func (m *PostRepository) FindByType(_ context.Context, postType string) ([]*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var out []*post.Post
	for _, p := range m.posts {
		if p.PostType() == postType {
			out = append(out, ClonePost(p))
		}
	}
	slices.SortFunc(out, func(a, b *post.Post) int {
		return b.CreatedAt().Compare(a.CreatedAt())
	})
	return out, nil
}

func (m *PostRepository) CountByOwnerSince(_ context.Context, ownerSubjectID string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return 0, m.FindErr
	}
	var n int64
	for _, p := range m.posts {
		if p.OwnerSubjectID() == ownerSubjectID && !p.CreatedAt().Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *PostRepository) Replace(_ context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls++
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	stored, ok := m.posts[p.ID()]
	if !ok {
		return errs.ErrNotFound
	}
	if m.ConflictsToInject > 0 {
		m.ConflictsToInject--
		stored.MarkPersisted(stored.Version() + 1)
	}
	if stored.Version() != p.Version() {
		return errs.ErrConcurrentModification
	}
	p.MarkPersisted(p.Version() + 1)
	m.posts[p.ID()] = ClonePost(p)
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id uuid.UUID, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.posts[id]
	if !ok {
		return errs.ErrNotFound
	}
	if stored.Version() != version {
		return errs.ErrConcurrentModification
	}
	delete(m.posts, id)
	return nil
}

// Len returns the number of stored posts
func (m *PostRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// ClonePost deep-copies an aggregate through its reconstruct path
func ClonePost(p *post.Post) *post.Post {
	comments := make([]*post.Comment, 0, len(p.Comments()))
	for _, c := range p.Comments() {
		comments = append(comments, cloneComment(c))
	}
	return post.Reconstruct(
		p.ID(), p.PostType(), p.OwnerSubjectID(), p.AuthorName(), p.AuthorEmail(),
		p.Caption(), p.MediaURL(), p.Likes(), p.CreatedAt(), comments, p.Version(),
	)
}

func cloneComment(c *post.Comment) *post.Comment {
	replies := make([]*post.Comment, 0, len(c.Replies()))
	for _, r := range c.Replies() {
		replies = append(replies, cloneComment(r))
	}
	return post.ReconstructComment(
		c.ID(), clonePtr(c.OwnerSubjectID()), c.AuthorName(), c.Text(), clonePtr(c.Email()),
		c.Likes(), c.CreatedAt(), c.State(), c.IsReply(), replies,
	)
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

