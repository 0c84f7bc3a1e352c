package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrTenantRequired          = errors.New("corp_id claim is required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
