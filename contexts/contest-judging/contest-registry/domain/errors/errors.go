package errors

import "errors"

var (
	ErrContestNotFound     = errors.New("contest not found")
	ErrInvalidContestInput = errors.New("invalid contest input")
	ErrForbidden           = errors.New("forbidden")
	ErrPasswordRequired    = errors.New("contest password required")
	ErrInvalidPassword     = errors.New("contest password is invalid")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTransitionContended = errors.New("status transition lost repeated races")
)
