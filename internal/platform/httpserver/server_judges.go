package httpserver

import (
	"errors"
	"net/http"

	judgeentities "inkwell/contexts/contest-judging/judge-registry/domain/entities"
	judgeerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	judgehttp "inkwell/contexts/contest-judging/judge-registry/transport/http"
)

func (i Identity) judgeActor() judgeentities.Actor {
	return judgeentities.Actor{UserID: i.UserID, Privileged: i.Privileged}
}

func (s *Server) writeJudgeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, judgeerrors.ErrContestNotFound):
		writeError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, judgeerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, judgeerrors.ErrInvalidJudge):
		writeError(w, http.StatusBadRequest, "invalid_judge", err.Error())
	case errors.Is(err, judgeerrors.ErrJudgeAlreadyAssigned):
		writeError(w, http.StatusConflict, "judge_already_assigned", err.Error())
	case errors.Is(err, judgeerrors.ErrJudgeNotFound):
		writeError(w, http.StatusNotFound, "judge_not_found", err.Error())
	case errors.Is(err, judgeerrors.ErrJudgeAlreadyVoted):
		writeError(w, http.StatusConflict, "judge_already_voted", err.Error())
	default:
		s.writeInfraError(w, r, err)
	}
}

func (s *Server) handleAssignJudge(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	var req judgehttp.AssignJudgeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.judges.Handler.AssignJudgeHandler(r.Context(), identity.judgeActor(), contestID, req)
	if err != nil {
		s.writeJudgeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListJudges(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.judges.Handler.ListJudgesHandler(r.Context(), identity.judgeActor(), contestID)
	if err != nil {
		s.writeJudgeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnassignJudge(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.judges.Handler.UnassignJudgeHandler(r.Context(), identity.judgeActor(), contestID, r.PathValue("judge_key"))
	if err != nil {
		s.writeJudgeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
