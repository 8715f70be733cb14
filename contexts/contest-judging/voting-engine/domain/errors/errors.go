package errors

import "errors"

var (
	ErrContestNotFound        = errors.New("contest not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidJudge           = errors.New("invalid judge identity")
	ErrInvalidVoteSet         = errors.New("malformed vote set")
	ErrContestNotInEvaluation = errors.New("contest is not accepting votes")
	ErrNotAssignedJudge       = errors.New("judge is not assigned to this contest")
	ErrUnknownSubmission      = errors.New("vote references an unknown submission")
	ErrIncompletePlacement    = errors.New("vote set does not fill every required place")
	ErrVoteSetNotFound        = errors.New("vote set not found")
	ErrRankingUnavailable     = errors.New("ranking is not available while the contest is open")
)
