package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"staffhub/internal/domain/access"
)

// MemoryStore is an in-process StoreAPI used by tests and local tooling.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]Credentials{}}
}

func (m *MemoryStore) CredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, creds := range m.users {
		if strings.ToLower(creds.Email) == needle {
			return creds, nil
		}
	}
	return Credentials{}, ErrNotFound
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	creds, ok := m.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return creds.User, nil
}

func (m *MemoryStore) List(ctx context.Context, limit, offset int) (ListResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]User, 0, len(m.users))
	for _, creds := range m.users {
		all = append(all, creds.User)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Email < all[j].Email
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	out := ListResult{Total: len(all), Users: []User{}}
	if offset >= len(all) {
		return out, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out.Users = append(out.Users, all[offset:end]...)
	return out, nil
}

func (m *MemoryStore) UpdateRole(ctx context.Context, userID string, role access.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	creds.Role = role
	m.users[userID] = creds
	return nil
}

func (m *MemoryStore) Create(ctx context.Context, email, passwordHash string, role access.Role) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.users[id] = Credentials{
		User: User{
			ID:        id,
			Email:     strings.TrimSpace(email),
			Role:      role,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	return id, nil
}

// SetActive toggles the active flag.
func (m *MemoryStore) SetActive(userID string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if creds, ok := m.users[userID]; ok {
		creds.Active = active
		m.users[userID] = creds
	}
}
