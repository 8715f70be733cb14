package entities

import (
	"time"
	"unicode/utf8"
)

type ContestStatus string

const (
	ContestStatusOpen       ContestStatus = "open"
	ContestStatusEvaluation ContestStatus = "evaluation"
	ContestStatusClosed     ContestStatus = "closed"
)

const (
	MaxPlace         = 3
	maxCommentLength = 4000
)

// VoteEntry is one line of a vote set. Place is nil for a comment-only entry.
type VoteEntry struct {
	SubmissionID int64
	Place        *int
	Comment      string
}

type Vote struct {
	VoteID       string
	ContestID    int64
	SubmissionID int64
	Judge        JudgeIdentity
	Place        *int
	Comment      string
	BaseVersion  string
	CastAt       time.Time
}

// PointsForPlace awards 3, 2 and 1 points for the first three places.
func PointsForPlace(place int) int {
	if place < 1 || place > MaxPlace {
		return 0
	}
	return MaxPlace + 1 - place
}

// RequiredPlaces is the number of places a vote set must fill when n
// submissions are active.
func RequiredPlaces(n int) int {
	return min(MaxPlace, n)
}

// WellFormed checks a vote set without looking at the contest: places within
// 1..3, no place or submission used twice. An empty set is well formed; the
// placement rule decides whether the contest accepts it.
func WellFormed(entries []VoteEntry) bool {
	seenPlaces := make(map[int]struct{}, MaxPlace)
	seenSubmissions := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		if entry.SubmissionID <= 0 || utf8.RuneCountInString(entry.Comment) > maxCommentLength {
			return false
		}
		if _, dup := seenSubmissions[entry.SubmissionID]; dup {
			return false
		}
		seenSubmissions[entry.SubmissionID] = struct{}{}
		if entry.Place == nil {
			continue
		}
		place := *entry.Place
		if place < 1 || place > MaxPlace {
			return false
		}
		if _, dup := seenPlaces[place]; dup {
			return false
		}
		seenPlaces[place] = struct{}{}
	}
	return true
}

// PlacementComplete reports whether places 1..RequiredPlaces(active) are all
// present in entries.
func PlacementComplete(entries []VoteEntry, active int) bool {
	present := make(map[int]struct{}, MaxPlace)
	for _, entry := range entries {
		if entry.Place != nil {
			present[*entry.Place] = struct{}{}
		}
	}
	for place := 1; place <= RequiredPlaces(active); place++ {
		if _, ok := present[place]; !ok {
			return false
		}
	}
	return true
}
