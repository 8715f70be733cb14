package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

type ContestStatus string

const (
	ContestStatusOpen       ContestStatus = "open"
	ContestStatusEvaluation ContestStatus = "evaluation"
	ContestStatusClosed     ContestStatus = "closed"
)

const MaxTitleLength = 200

func (s ContestStatus) Valid() bool {
	switch s {
	case ContestStatusOpen, ContestStatusEvaluation, ContestStatusClosed:
		return true
	default:
		return false
	}
}

// Next is the single forward step allowed to non-privileged actors.
func (s ContestStatus) Next() (ContestStatus, bool) {
	switch s {
	case ContestStatusOpen:
		return ContestStatusEvaluation, true
	case ContestStatusEvaluation:
		return ContestStatusClosed, true
	default:
		return "", false
	}
}

type Contest struct {
	ContestID               int64
	Title                   string
	Description             string
	CreatorID               int64
	Status                  ContestStatus
	IsPublic                bool
	PasswordProtected       bool
	PasswordHash            string
	MinVotesRequired        *int
	JudgesExcludedAsAuthors bool
	OneSubmissionPerAuthor  bool
	EndsAt                  *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Type is the derived listing label.
func (c Contest) Type() string {
	switch {
	case c.PasswordProtected:
		return "protected"
	case c.IsPublic:
		return "public"
	default:
		return "private"
	}
}

func (c Contest) IsCreator(userID int64) bool {
	return userID != 0 && c.CreatorID == userID
}

// Expired reports an open contest whose end time has passed.
func (c Contest) Expired(now time.Time) bool {
	return c.Status == ContestStatusOpen && c.EndsAt != nil && c.EndsAt.Before(now)
}

func ValidTitle(title string) bool {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	return n >= 1 && n <= MaxTitleLength
}

func ValidMinVotes(value *int) bool {
	return value == nil || *value >= 1
}

type StateHistory struct {
	HistoryID    string
	ContestID    int64
	FromState    ContestStatus
	ToState      ContestStatus
	ChangedBy    int64
	ChangeReason string
	CreatedAt    time.Time
}

// Actor is the caller of a registry operation. System marks internal
// callers such as the expiry sweep and the voting engine.
type Actor struct {
	UserID     int64
	Privileged bool
	System     bool
}

func SystemActor() Actor {
	return Actor{System: true}
}

// CanManage reports whether actor may edit, transition or delete contest.
func (a Actor) CanManage(contest Contest) bool {
	return a.System || a.Privileged || contest.IsCreator(a.UserID)
}

// ContestStats are counts supplied by the submission manager.
type ContestStats struct {
	ParticipantCount int
	TextCount        int
}

type ContestCard struct {
	Contest Contest
	Stats   ContestStats
}
