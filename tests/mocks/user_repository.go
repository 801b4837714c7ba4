package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/user"
)

// UserRepository is an in-memory versioned store for users.
// It keeps snapshots, so changes to a loaded user are invisible until Replace.
type UserRepository struct {
	mu        sync.Mutex
	bySubject map[string]*user.User

	// ConflictsToInject makes the next N Replace calls lose a race:
	// the stored version is bumped by a phantom writer before the compare.
	ConflictsToInject int
	FindErr           error
	ReplaceErr        error
	ReplaceCalls      int
}

// NewUserRepository creates an empty repository
func NewUserRepository() *UserRepository {
	return &UserRepository{bySubject: make(map[string]*user.User)}
}

// Add stores u as-is, version 1 when unset
func (m *UserRepository) Add(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Version() == 0 {
		u.MarkPersisted(1)
	}
	m.bySubject[u.SubjectID()] = cloneUser(u)
}

// Get returns the stored snapshot
func (m *UserRepository) Get(subjectID string) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.bySubject[subjectID]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

func (m *UserRepository) FindBySubjectID(_ context.Context, subjectID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	u, ok := m.bySubject[subjectID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *UserRepository) Insert(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bySubject[u.SubjectID()]; ok {
		return errs.ErrAlreadyExists
	}
	u.MarkPersisted(1)
	m.bySubject[u.SubjectID()] = cloneUser(u)
	return nil
}

func (m *UserRepository) Replace(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls++
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}

	stored, ok := m.bySubject[u.SubjectID()]
	if !ok {
		return errs.ErrNotFound
	}
	if m.ConflictsToInject > 0 {
		m.ConflictsToInject--
		stored.MarkPersisted(stored.Version() + 1)
	}
	if stored.Version() != u.Version() {
		return errs.ErrConcurrentModification
	}

	u.MarkPersisted(u.Version() + 1)
	m.bySubject[u.SubjectID()] = cloneUser(u)
	return nil
}

func cloneUser(u *user.User) *user.User {
	return user.Reconstruct(
		u.ID(), u.SubjectID(), u.Email(), u.DisplayName(), u.Bio(), u.Habits(), u.PhotoURL(),
		u.Coins(), u.Badges(), u.CreatedAt(), u.Version(),
	)
}
