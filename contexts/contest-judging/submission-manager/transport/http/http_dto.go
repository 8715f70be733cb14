package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitRequest struct {
	TextID int64 `json:"text_id"`
}

type SubmissionDTO struct {
	SubmissionID  int64  `json:"submission_id"`
	ContestID     int64  `json:"contest_id"`
	TextID        int64  `json:"text_id,omitempty"`
	AnonymousCode string `json:"anonymous_code"`
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"`
	OwnerID       *int64 `json:"owner_id,omitempty"`
	AuthorID      *int64 `json:"author_id,omitempty"`
	SubmittedAt   string `json:"submitted_at"`
	Withdrawn     bool   `json:"withdrawn"`
}

type SubmitResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type WithdrawResponse struct {
	SubmissionID int64  `json:"submission_id"`
	Outcome      string `json:"outcome"`
}

type ListSubmissionsResponse struct {
	Items  []SubmissionDTO `json:"items"`
	Masked bool            `json:"masked"`
}

type TextDeletedRequest struct {
	TextID int64 `json:"text_id"`
}

type TextDeletedResponse struct {
	TextID          int64 `json:"text_id"`
	DeletedCount    int   `json:"deleted_count"`
	TombstonedCount int   `json:"tombstoned_count"`
}
