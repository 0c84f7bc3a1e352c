package leave

import "errors"

var (
	ErrUnknownStatus = errors.New("unknown leave status")
)
