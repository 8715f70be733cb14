package contractsv1

import "time"

const (
	TopicContestStatusChanged = "contest.status_changed"
	TopicContestDeleted       = "contest.deleted"
	TopicTextDeleted          = "text.deleted"
)

type ContestStatusChanged struct {
	ContestID  int64     `json:"contest_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  int64     `json:"changed_by"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

type ContestDeleted struct {
	ContestID int64     `json:"contest_id"`
	DeletedBy int64     `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TextDeleted is produced by the text library when a text is removed.
type TextDeleted struct {
	TextID    int64     `json:"text_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
