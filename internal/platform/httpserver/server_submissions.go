package httpserver

import (
	"errors"
	"net/http"

	submissionentities "inkwell/contexts/contest-judging/submission-manager/domain/entities"
	submissionerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	submissionhttp "inkwell/contexts/contest-judging/submission-manager/transport/http"
)

func (i Identity) submissionActor() submissionentities.Actor {
	return submissionentities.Actor{UserID: i.UserID, Privileged: i.Privileged}
}

func (s *Server) writeSubmissionDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, submissionerrors.ErrContestNotFound):
		writeError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, submissionerrors.ErrTextNotFound):
		writeError(w, http.StatusNotFound, "text_not_found", err.Error())
	case errors.Is(err, submissionerrors.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, submissionerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, submissionerrors.ErrContestNotOpen):
		writeError(w, http.StatusConflict, "contest_not_open", err.Error())
	case errors.Is(err, submissionerrors.ErrDuplicateSubmission):
		writeError(w, http.StatusConflict, "duplicate_submission", err.Error())
	case errors.Is(err, submissionerrors.ErrAuthorLimitExceeded):
		writeError(w, http.StatusConflict, "author_limit_exceeded", err.Error())
	case errors.Is(err, submissionerrors.ErrJudgeCannotAuthor):
		writeError(w, http.StatusConflict, "judge_cannot_author", err.Error())
	default:
		s.writeInfraError(w, r, err)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	var req submissionhttp.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.submissions.Handler.SubmitHandler(r.Context(), identity.submissionActor(), contestID, req)
	if err != nil {
		s.writeSubmissionDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.submissions.Handler.ListSubmissionsHandler(r.Context(), identity.submissionActor(), contestID, r.Header.Get(passwordHeader))
	if err != nil {
		s.writeSubmissionDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	submissionID, ok := pathID(w, r, "submission_id")
	if !ok {
		return
	}
	resp, err := s.submissions.Handler.WithdrawHandler(r.Context(), identity.submissionActor(), contestID, submissionID)
	if err != nil {
		s.writeSubmissionDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTextDeleted is called by the text library with an operator token.
func (s *Server) handleTextDeleted(w http.ResponseWriter, r *http.Request) {
	if !s.requireOperator(w, r) {
		return
	}
	textID, ok := pathID(w, r, "text_id")
	if !ok {
		return
	}
	resp, err := s.submissions.Handler.TextDeletedHandler(r.Context(), submissionhttp.TextDeletedRequest{TextID: textID})
	if err != nil {
		s.writeSubmissionDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
