package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	contestentities "inkwell/contexts/contest-judging/contest-registry/domain/entities"
	contesterrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	contesthttp "inkwell/contexts/contest-judging/contest-registry/transport/http"
)

func (i Identity) contestActor() contestentities.Actor {
	return contestentities.Actor{UserID: i.UserID, Privileged: i.Privileged}
}

func (s *Server) writeContestDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contesterrors.ErrContestNotFound):
		writeError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrInvalidContestInput):
		writeError(w, http.StatusBadRequest, "invalid_contest_input", err.Error())
	case errors.Is(err, contesterrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, contesterrors.ErrPasswordRequired):
		writeError(w, http.StatusUnauthorized, "password_required", err.Error())
	case errors.Is(err, contesterrors.ErrInvalidPassword):
		writeError(w, http.StatusForbidden, "invalid_password", err.Error())
	case errors.Is(err, contesterrors.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, contesterrors.ErrTransitionContended):
		writeError(w, http.StatusServiceUnavailable, "transition_contended", err.Error())
	default:
		s.writeInfraError(w, r, err)
	}
}

func (s *Server) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req contesthttp.CreateContestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.CreateContestHandler(r.Context(), identity.contestActor(), req)
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	resp, err := s.registry.Handler.ListContestCardsHandler(r.Context(), identity.contestActor(), query.Get("status"), limit)
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetContest(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.registry.Handler.GetContestDetailHandler(r.Context(), identity.contestActor(), contestID, r.Header.Get(passwordHeader))
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateContest(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	var req contesthttp.UpdateContestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.UpdateContestHandler(r.Context(), identity.contestActor(), contestID, req)
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteContest(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	if err := s.registry.Handler.DeleteContestHandler(r.Context(), identity.contestActor(), contestID); err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	var req contesthttp.TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.TransitionHandler(r.Context(), identity.contestActor(), contestID, req)
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContestHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.registry.Handler.ListHistoryHandler(r.Context(), identity.contestActor(), contestID)
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if !s.requireOperator(w, r) {
		return
	}
	resp, err := s.registry.Handler.SweepExpiredHandler(r.Context())
	if err != nil {
		s.writeContestDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
