package entities

import (
	"strconv"
	"strings"
)

type JudgeKind string

const (
	JudgeKindHuman JudgeKind = "human"
	JudgeKindAI    JudgeKind = "ai"
)

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
		return j.AgentID > 0 && j.UserID == 0 && j.Model != "" && !strings.ContainsAny(j.Model, " \t\n")
	default:
		return false
	}
}

// Key matches the assignment key kept by the judge registry.
func (j JudgeIdentity) Key() string {
	if j.Kind == JudgeKindAI {
		return "agent:" + strconv.FormatInt(j.AgentID, 10) + ":" + j.Model
	}
	return "user:" + strconv.FormatInt(j.UserID, 10)
}

// Actor is the authenticated caller. AIExecutor marks the collaborator that
// delivers AI vote sets.
type Actor struct {
	UserID     int64
	Privileged bool
	AIExecutor bool
}
