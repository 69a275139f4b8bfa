package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"staffhub/internal/domain/access"
	"staffhub/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) CredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	var out Credentials
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, active, created_at, password_hash
    FROM users
    WHERE lower(email) = lower($1)
  `, strings.TrimSpace(email)).Scan(&out.ID, &out.Email, &role, &out.Active, &out.CreatedAt, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, err
	}
	out.Role = access.ResolveRole(role)
	return out, nil
}

func (s *Store) Get(ctx context.Context, userID string) (User, error) {
	if uuid.Validate(userID) != nil {
		return User{}, ErrNotFound
	}
	var out User
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, active, created_at
    FROM users
    WHERE id = $1
  `, userID).Scan(&out.ID, &out.Email, &role, &out.Active, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	out.Role = access.ResolveRole(role)
	return out, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) (ListResult, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users").Scan(&total); err != nil {
		return ListResult{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, email, role, active, created_at
    FROM users
    ORDER BY created_at, email
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	out := ListResult{Users: make([]User, 0, limit), Total: total}
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &role, &u.Active, &u.CreatedAt); err != nil {
			return ListResult{}, err
		}
		u.Role = access.ResolveRole(role)
		out.Users = append(out.Users, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRole(ctx context.Context, userID string, role access.Role) error {
	if uuid.Validate(userID) != nil {
		return ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, "UPDATE users SET role = $1, updated_at = now() WHERE id = $2", string(role), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Create(ctx context.Context, email, passwordHash string, role access.Role) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, $3)
    RETURNING id
  `, strings.TrimSpace(email), passwordHash, string(role)).Scan(&id)
	return id, err
}
