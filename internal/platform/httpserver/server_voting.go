package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	votingentities "inkwell/contexts/contest-judging/voting-engine/domain/entities"
	votingerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	votinghttp "inkwell/contexts/contest-judging/voting-engine/transport/http"
)

func (i Identity) votingActor() votingentities.Actor {
	return votingentities.Actor{UserID: i.UserID, Privileged: i.Privileged, AIExecutor: i.AIExecutor}
}

func (s *Server) writeVotingDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, votingerrors.ErrContestNotFound):
		writeError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, votingerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, votingerrors.ErrInvalidJudge):
		writeError(w, http.StatusBadRequest, "invalid_judge", err.Error())
	case errors.Is(err, votingerrors.ErrInvalidVoteSet):
		writeError(w, http.StatusBadRequest, "invalid_vote_set", err.Error())
	case errors.Is(err, votingerrors.ErrContestNotInEvaluation):
		writeError(w, http.StatusConflict, "contest_not_in_evaluation", err.Error())
	case errors.Is(err, votingerrors.ErrNotAssignedJudge):
		writeError(w, http.StatusForbidden, "not_assigned_judge", err.Error())
	case errors.Is(err, votingerrors.ErrUnknownSubmission):
		writeError(w, http.StatusUnprocessableEntity, "unknown_submission", err.Error())
	case errors.Is(err, votingerrors.ErrIncompletePlacement):
		writeError(w, http.StatusUnprocessableEntity, "incomplete_placement", err.Error())
	case errors.Is(err, votingerrors.ErrVoteSetNotFound):
		writeError(w, http.StatusNotFound, "vote_set_not_found", err.Error())
	case errors.Is(err, votingerrors.ErrRankingUnavailable):
		writeError(w, http.StatusConflict, "ranking_unavailable", err.Error())
	default:
		s.writeInfraError(w, r, err)
	}
}

func (s *Server) handleCastVoteSet(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	var req votinghttp.CastVoteSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.voting.Handler.CastVoteSetHandler(r.Context(), identity.votingActor(), contestID, req)
	if err != nil {
		s.writeVotingDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetVoteSet reads the caller's own vote set, or the one named by the
// kind, user_id, agent_id and model query parameters.
func (s *Server) handleGetVoteSet(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	var judge *votinghttp.JudgeDTO
	query := r.URL.Query()
	if kind := strings.TrimSpace(query.Get("kind")); kind != "" {
		userID, userErr := parseOptionalID(query.Get("user_id"))
		agentID, agentErr := parseOptionalID(query.Get("agent_id"))
		if userErr != nil || agentErr != nil {
			writeError(w, http.StatusBadRequest, "invalid_judge", "user_id and agent_id must be integers")
			return
		}
		judge = &votinghttp.JudgeDTO{Kind: kind, UserID: userID, AgentID: agentID, Model: query.Get("model")}
	}
	resp, err := s.voting.Handler.GetVoteSetHandler(r.Context(), identity.votingActor(), contestID, judge)
	if err != nil {
		s.writeVotingDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.voting.Handler.GetRankingHandler(r.Context(), identity.votingActor(), contestID, r.Header.Get(passwordHeader))
	if err != nil {
		s.writeVotingDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluateClosure(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.voting.Handler.EvaluateClosureHandler(r.Context(), identity.votingActor(), contestID)
	if err != nil {
		s.writeVotingDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseOptionalID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
