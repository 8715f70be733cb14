package entities

import (
	"sort"
	"time"
)

type Standing struct {
	SubmissionID int64
	Rank         int
	Points       int
	FirstPlaces  int
	SecondPlaces int
	ThirdPlaces  int
}

type FinalRanking struct {
	ContestID int64
	Standings []Standing
	FrozenAt  time.Time
}

// Aggregate totals the votes of every listed submission and ranks them.
// Votes for submissions outside the list are ignored. Equal totals share a
// rank (1, 1, 3) and are listed by ascending submission id.
func Aggregate(submissionIDs []int64, votes []Vote) []Standing {
	bySubmission := make(map[int64]*Standing, len(submissionIDs))
	standings := make([]Standing, len(submissionIDs))
	for i, id := range submissionIDs {
		standings[i] = Standing{SubmissionID: id}
		bySubmission[id] = &standings[i]
	}
	for _, vote := range votes {
		standing, ok := bySubmission[vote.SubmissionID]
		if !ok || vote.Place == nil {
			continue
		}
		standing.Points += PointsForPlace(*vote.Place)
		switch *vote.Place {
		case 1:
			standing.FirstPlaces++
		case 2:
			standing.SecondPlaces++
		case 3:
			standing.ThirdPlaces++
		}
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].SubmissionID < standings[j].SubmissionID
	})
	for i := range standings {
		if i > 0 && standings[i].Points == standings[i-1].Points {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}

// ClosureReached is true when at least one judge is assigned, every assigned
// judge has a vote set and, with minVotes set, at least that many assigned
// judges voted.
func ClosureReached(assignedKeys []string, votedKeys map[string]struct{}, minVotes *int) bool {
	if len(assignedKeys) == 0 {
		return false
	}
	voted := 0
	for _, key := range assignedKeys {
		if _, ok := votedKeys[key]; !ok {
			return false
		}
		voted++
	}
	return minVotes == nil || voted >= *minVotes
}
