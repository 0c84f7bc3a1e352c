package calendar

import "errors"

var (
	ErrShiftAssignmentNotFound = errors.New("company shift assignment not found")
	ErrShiftPolicyNotFound     = errors.New("shift policy not found")
)
