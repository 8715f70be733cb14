package entities

import "testing"

func votesFor(judge JudgeIdentity, placements map[int64]int) []Vote {
	out := make([]Vote, 0, len(placements))
	for submissionID, p := range placements {
		out = append(out, Vote{SubmissionID: submissionID, Judge: judge, Place: place(p)})
	}
	return out
}

func TestAggregateIsSymmetric(t *testing.T) {
	votes := append(
		votesFor(HumanJudge(1), map[int64]int{1: 1, 2: 2}),
		votesFor(HumanJudge(2), map[int64]int{2: 1, 1: 2})...,
	)
	standings := Aggregate([]int64{1, 2}, votes)
	if standings[0].Points != 5 || standings[1].Points != 5 {
		t.Fatalf("expected 5/5, got %+v", standings)
	}
	if standings[0].Rank != 1 || standings[1].Rank != 1 {
		t.Fatalf("expected shared first rank, got %+v", standings)
	}
	if standings[0].SubmissionID != 1 {
		t.Fatalf("expected ties listed by submission id, got %+v", standings)
	}
}

func TestAggregateCompetitionRanking(t *testing.T) {
	votes := append(
		votesFor(HumanJudge(1), map[int64]int{10: 1, 20: 2, 30: 3}),
		votesFor(AIJudge(5, "m"), map[int64]int{20: 1, 10: 2, 30: 3})...,
	)
	votes = append(votes, Vote{SubmissionID: 99, Place: place(1)})
	standings := Aggregate([]int64{10, 20, 30, 40}, votes)

	want := []Standing{
		{SubmissionID: 10, Rank: 1, Points: 5, FirstPlaces: 1, SecondPlaces: 1},
		{SubmissionID: 20, Rank: 1, Points: 5, FirstPlaces: 1, SecondPlaces: 1},
		{SubmissionID: 30, Rank: 3, Points: 2, ThirdPlaces: 2},
		{SubmissionID: 40, Rank: 4, Points: 0},
	}
	if len(standings) != len(want) {
		t.Fatalf("unexpected standings %+v", standings)
	}
	for i := range want {
		if standings[i] != want[i] {
			t.Fatalf("row %d: got %+v want %+v", i, standings[i], want[i])
		}
	}
}

func TestClosureReached(t *testing.T) {
	two := 2
	three := 3
	voted := map[string]struct{}{"user:1": {}, "agent:2:m": {}}

	if ClosureReached(nil, voted, nil) {
		t.Fatalf("no assigned judges must never close")
	}
	if !ClosureReached([]string{"user:1", "agent:2:m"}, voted, nil) {
		t.Fatalf("all assigned judges voted")
	}
	if ClosureReached([]string{"user:1", "user:3"}, voted, nil) {
		t.Fatalf("user:3 has not voted")
	}
	if !ClosureReached([]string{"user:1", "agent:2:m"}, voted, &two) {
		t.Fatalf("min votes 2 satisfied")
	}
	if ClosureReached([]string{"user:1", "agent:2:m"}, voted, &three) {
		t.Fatalf("min votes 3 not satisfied by two judges")
	}
}
