package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JudgeDTO names a judge either by kind and ids or by its canonical key.
type JudgeDTO struct {
	Kind    string `json:"kind"`
	UserID  int64  `json:"user_id,omitempty"`
	AgentID int64  `json:"agent_id,omitempty"`
	Model   string `json:"model,omitempty"`
	Key     string `json:"key,omitempty"`
}

type AssignJudgeRequest struct {
	Judge JudgeDTO `json:"judge"`
}

type AssignmentDTO struct {
	ContestID  int64    `json:"contest_id"`
	Judge      JudgeDTO `json:"judge"`
	AssignedBy int64    `json:"assigned_by"`
	AssignedAt string   `json:"assigned_at"`
}

type AssignJudgeResponse struct {
	Assignment AssignmentDTO `json:"assignment"`
}

type UnassignJudgeResponse struct {
	JudgeKey       string `json:"judge_key"`
	VoteSetDropped bool   `json:"vote_set_dropped"`
}

type ListJudgesResponse struct {
	Items []AssignmentDTO `json:"items"`
}
