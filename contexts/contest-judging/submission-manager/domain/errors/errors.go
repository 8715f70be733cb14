package errors

import "errors"

var (
	ErrContestNotFound     = errors.New("contest not found")
	ErrTextNotFound        = errors.New("text not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrForbidden           = errors.New("forbidden")
	ErrContestNotOpen      = errors.New("contest is not open for submissions")
	ErrDuplicateSubmission = errors.New("text already submitted to this contest")
	ErrAuthorLimitExceeded = errors.New("author already has a submission in this contest")
	ErrJudgeCannotAuthor   = errors.New("assigned judges cannot submit their own texts")
)
