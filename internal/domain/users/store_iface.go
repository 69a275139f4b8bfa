package users

import (
	"context"

	"staffhub/internal/domain/access"
)

type StoreAPI interface {
	CredentialsByEmail(ctx context.Context, email string) (Credentials, error)
	Get(ctx context.Context, userID string) (User, error)
	List(ctx context.Context, limit, offset int) (ListResult, error)
	UpdateRole(ctx context.Context, userID string, role access.Role) error
	Create(ctx context.Context, email, passwordHash string, role access.Role) (string, error)
}
