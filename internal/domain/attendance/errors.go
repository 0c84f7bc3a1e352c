package attendance

import "errors"

var (
	ErrInvalidPunchDate = errors.New("invalid attendance date")
)
