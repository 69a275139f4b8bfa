package users

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("user is inactive")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSelfRoleChange     = errors.New("users cannot change their own role")
	ErrSuperAdminGrant    = errors.New("only a super admin may grant or revoke super admin")
)
