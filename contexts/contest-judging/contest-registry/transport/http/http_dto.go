package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateContestRequest struct {
	Title                   string `json:"title"`
	Description             string `json:"description"`
	IsPublic                bool   `json:"is_public"`
	PasswordProtected       bool   `json:"password_protected"`
	Password                string `json:"password,omitempty"`
	MinVotesRequired        *int   `json:"min_votes_required,omitempty"`
	JudgesExcludedAsAuthors bool   `json:"judges_excluded_as_authors"`
	OneSubmissionPerAuthor  bool   `json:"one_submission_per_author"`
	EndsAt                  string `json:"ends_at,omitempty"`
}

type UpdateContestRequest struct {
	Title                   *string `json:"title,omitempty"`
	Description             *string `json:"description,omitempty"`
	IsPublic                *bool   `json:"is_public,omitempty"`
	PasswordProtected       *bool   `json:"password_protected,omitempty"`
	Password                *string `json:"password,omitempty"`
	MinVotesRequired        *int    `json:"min_votes_required,omitempty"`
	ClearMinVotes           bool    `json:"clear_min_votes,omitempty"`
	JudgesExcludedAsAuthors *bool   `json:"judges_excluded_as_authors,omitempty"`
	OneSubmissionPerAuthor  *bool   `json:"one_submission_per_author,omitempty"`
	EndsAt                  *string `json:"ends_at,omitempty"`
	ClearEndsAt             bool    `json:"clear_ends_at,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type ContestDTO struct {
	ContestID               int64  `json:"contest_id"`
	Title                   string `json:"title"`
	Description             string `json:"description"`
	CreatorID               int64  `json:"creator_id"`
	Status                  string `json:"status"`
	ContestType             string `json:"contest_type"`
	IsPublic                bool   `json:"is_public"`
	PasswordProtected       bool   `json:"password_protected"`
	MinVotesRequired        *int   `json:"min_votes_required,omitempty"`
	JudgesExcludedAsAuthors bool   `json:"judges_excluded_as_authors"`
	OneSubmissionPerAuthor  bool   `json:"one_submission_per_author"`
	EndsAt                  string `json:"ends_at,omitempty"`
	CreatedAt               string `json:"created_at"`
	UpdatedAt               string `json:"updated_at"`
}

type ContestCardDTO struct {
	ContestDTO
	ParticipantCount int `json:"participant_count"`
	TextCount        int `json:"text_count"`
}

type ContestResponse struct {
	Contest ContestDTO `json:"contest"`
}

type ContestDetailResponse struct {
	Contest          ContestDTO `json:"contest"`
	ParticipantCount int        `json:"participant_count"`
	TextCount        int        `json:"text_count"`
}

type ListContestCardsResponse struct {
	Items []ContestCardDTO `json:"items"`
}

type TransitionResponse struct {
	Contest    ContestDTO `json:"contest"`
	FromStatus string     `json:"from_status"`
	Changed    bool       `json:"changed"`
}

type StateHistoryDTO struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ChangedBy  int64  `json:"changed_by"`
	Reason     string `json:"reason,omitempty"`
	ChangedAt  string `json:"changed_at"`
}

type ListHistoryResponse struct {
	Items []StateHistoryDTO `json:"items"`
}

type SweepResponse struct {
	MovedCount int `json:"moved_count"`
}
