package entities

import "time"

// WithdrawnPlaceholder replaces the title and content of a tombstoned
// submission in every listing.
const WithdrawnPlaceholder = "[withdrawn]"

type ContestStatus string

const (
	ContestStatusOpen       ContestStatus = "open"
	ContestStatusEvaluation ContestStatus = "evaluation"
	ContestStatusClosed     ContestStatus = "closed"
)

type Submission struct {
	SubmissionID int64
	ContestID    int64
	TextID       int64
	OwnerID      int64
	AuthorID     int64
	SubmittedAt  time.Time
	Tombstoned   bool
	WithdrawnAt  *time.Time
}

func (s Submission) Active() bool {
	return !s.Tombstoned
}

// Text is the read model of a text in the external library.
type Text struct {
	TextID   int64
	OwnerID  int64
	AuthorID int64
	Title    string
	Content  string
}

type Actor struct {
	UserID     int64
	Privileged bool
}

func (a Actor) Owns(s Submission) bool {
	return a.UserID != 0 && s.OwnerID == a.UserID
}

type ContestStats struct {
	ParticipantCount int
	TextCount        int
}

// Stats counts distinct authors and texts over active submissions.
func Stats(items []Submission) ContestStats {
	authors := make(map[int64]struct{}, len(items))
	stats := ContestStats{}
	for _, item := range items {
		if !item.Active() {
			continue
		}
		stats.TextCount++
		authors[item.AuthorID] = struct{}{}
	}
	stats.ParticipantCount = len(authors)
	return stats
}
