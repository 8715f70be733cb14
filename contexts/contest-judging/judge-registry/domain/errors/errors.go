package errors

import "errors"

var (
	ErrContestNotFound      = errors.New("contest not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidJudge         = errors.New("invalid judge identity")
	ErrJudgeAlreadyAssigned = errors.New("judge already assigned to this contest")
	ErrJudgeNotFound        = errors.New("judge is not assigned to this contest")
	ErrJudgeAlreadyVoted    = errors.New("judge has already voted in this contest")
)
