package users

import (
	"context"
	"errors"
	"fmt"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/auth"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Authenticate checks email and password and returns the active user.
// Unknown emails and wrong passwords are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	creds, err := s.store.CredentialsByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("load credentials: %w", err)
	}
	if err := auth.CheckPassword(creds.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !creds.Active {
		return User{}, ErrInactive
	}
	return creds.User, nil
}

func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.store.Get(ctx, userID)
}

// IsActive reports whether userID names an account that may still act.
// Unknown users are inactive.
func (s *Service) IsActive(ctx context.Context, userID string) (bool, error) {
	user, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Active, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) (ListResult, error) {
	return s.store.List(ctx, limit, offset)
}

// AssignRole changes the role of userID on behalf of the acting user. Only a
// super admin may move a user into or out of super admin, and nobody may
// change their own role.
func (s *Service) AssignRole(ctx context.Context, actorID string, actorRole access.Role, userID string, role access.Role) (RoleChange, error) {
	if !role.Valid() {
		return RoleChange{}, ErrInvalidRole
	}
	if actorID == userID {
		return RoleChange{}, ErrSelfRoleChange
	}

	target, err := s.store.Get(ctx, userID)
	if err != nil {
		return RoleChange{}, err
	}

	touchesSuperAdmin := role == access.RoleSuperAdmin || target.Role == access.RoleSuperAdmin
	if touchesSuperAdmin && actorRole != access.RoleSuperAdmin {
		return RoleChange{}, ErrSuperAdminGrant
	}

	change := RoleChange{UserID: userID, Before: target.Role, After: role}
	if target.Role == role {
		return change, nil
	}
	if err := s.store.UpdateRole(ctx, userID, role); err != nil {
		return RoleChange{}, err
	}
	return change, nil
}

// EnsureUser creates a user with the given role unless the email already
// exists. It reports whether a user was created.
func (s *Service) EnsureUser(ctx context.Context, email, password string, role access.Role) (bool, error) {
	if !role.Valid() {
		return false, ErrInvalidRole
	}
	_, err := s.store.CredentialsByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	if _, err := s.store.Create(ctx, email, hash, role); err != nil {
		return false, err
	}
	return true, nil
}
