package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JudgeDTO is only sent for AI vote sets. Human vote sets take the judge
// from the bearer token.
type JudgeDTO struct {
	Kind    string `json:"kind"`
	UserID  int64  `json:"user_id,omitempty"`
	AgentID int64  `json:"agent_id,omitempty"`
	Model   string `json:"model,omitempty"`
}

type VoteEntryDTO struct {
	SubmissionID int64  `json:"submission_id"`
	Place        *int   `json:"place,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

type CastVoteSetRequest struct {
	Judge       *JudgeDTO      `json:"judge,omitempty"`
	Entries     []VoteEntryDTO `json:"entries"`
	BaseVersion string         `json:"base_version,omitempty"`
}

type VoteDTO struct {
	VoteID       string `json:"vote_id"`
	SubmissionID int64  `json:"submission_id"`
	Place        *int   `json:"place,omitempty"`
	Comment      string `json:"comment,omitempty"`
	BaseVersion  string `json:"base_version,omitempty"`
	CastAt       string `json:"cast_at"`
}

type CastVoteSetResponse struct {
	ContestID     int64     `json:"contest_id"`
	JudgeKey      string    `json:"judge_key"`
	Votes         []VoteDTO `json:"votes"`
	Replaced      bool      `json:"replaced"`
	ContestClosed bool      `json:"contest_closed"`
}

type VoteSetResponse struct {
	ContestID int64     `json:"contest_id"`
	JudgeKey  string    `json:"judge_key"`
	Votes     []VoteDTO `json:"votes"`
}

type RankingEntryDTO struct {
	Rank          int    `json:"rank"`
	SubmissionID  int64  `json:"submission_id"`
	AnonymousCode string `json:"anonymous_code,omitempty"`
	OwnerID       *int64 `json:"owner_id,omitempty"`
	AuthorID      *int64 `json:"author_id,omitempty"`
	Points        int    `json:"points"`
	FirstPlaces   int    `json:"first_places"`
	SecondPlaces  int    `json:"second_places"`
	ThirdPlaces   int    `json:"third_places"`
}

type RankingResponse struct {
	ContestID int64             `json:"contest_id"`
	Status    string            `json:"status"`
	Final     bool              `json:"final"`
	Masked    bool              `json:"masked"`
	FrozenAt  string            `json:"frozen_at,omitempty"`
	Entries   []RankingEntryDTO `json:"entries"`
}

type EvaluateClosureResponse struct {
	ContestID int64 `json:"contest_id"`
	Closed    bool  `json:"closed"`
}
