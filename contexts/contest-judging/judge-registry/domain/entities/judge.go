package entities

import (
	"strconv"
	"strings"
	"time"
)

type JudgeKind string

const (
	JudgeKindHuman JudgeKind = "human"
	JudgeKindAI    JudgeKind = "ai"
)

const maxModelLength = 120

type ContestStatus string

const (
	ContestStatusOpen       ContestStatus = "open"
	ContestStatusEvaluation ContestStatus = "evaluation"
	ContestStatusClosed     ContestStatus = "closed"
)

// JudgeIdentity is a human user or an (agent, model) pair. The same agent
// under two models counts as two judges.
type JudgeIdentity struct {
	Kind    JudgeKind
	UserID  int64
	AgentID int64
	Model   string
}

func HumanJudge(userID int64) JudgeIdentity {
	return JudgeIdentity{Kind: JudgeKindHuman, UserID: userID}
}

func AIJudge(agentID int64, model string) JudgeIdentity {
	return JudgeIdentity{Kind: JudgeKindAI, AgentID: agentID, Model: model}
}

func (j JudgeIdentity) Valid() bool {
	switch j.Kind {
	case JudgeKindHuman:
		return j.UserID > 0 && j.AgentID == 0 && j.Model == ""
	case JudgeKindAI:
		model := strings.TrimSpace(j.Model)
		return j.AgentID > 0 && j.UserID == 0 && model != "" && model == j.Model &&
			len(model) <= maxModelLength && !strings.ContainsAny(model, " \t\n")
	default:
		return false
	}
}

// Key is the canonical form stored with assignments and votes.
func (j JudgeIdentity) Key() string {
	if j.Kind == JudgeKindAI {
		return "agent:" + strconv.FormatInt(j.AgentID, 10) + ":" + j.Model
	}
	return "user:" + strconv.FormatInt(j.UserID, 10)
}

// ParseJudgeKey is the inverse of Key. The model part may itself contain
// colons.
func ParseJudgeKey(key string) (JudgeIdentity, bool) {
	kind, rest, ok := strings.Cut(key, ":")
	if !ok {
		return JudgeIdentity{}, false
	}
	var judge JudgeIdentity
	switch kind {
	case "user":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return JudgeIdentity{}, false
		}
		judge = HumanJudge(id)
	case "agent":
		rawID, model, ok := strings.Cut(rest, ":")
		if !ok {
			return JudgeIdentity{}, false
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return JudgeIdentity{}, false
		}
		judge = AIJudge(id, model)
	default:
		return JudgeIdentity{}, false
	}
	return judge, judge.Valid()
}

type Assignment struct {
	ContestID  int64
	Judge      JudgeIdentity
	AssignedBy int64
	AssignedAt time.Time
}

type Actor struct {
	UserID     int64
	Privileged bool
}
