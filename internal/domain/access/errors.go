package access

import "errors"

var (
	ErrEmptyPermission     = errors.New("permission key is empty")
	ErrDuplicatePermission = errors.New("duplicate permission key")
	ErrUnknownPermission   = errors.New("unknown permission key")
	ErrUnknownRole         = errors.New("unknown role")
)
