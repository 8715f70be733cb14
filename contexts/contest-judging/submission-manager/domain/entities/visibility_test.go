package entities

import "testing"

func TestListingVisibility(t *testing.T) {
	cases := []struct {
		name   string
		status ContestStatus
		viewer Viewer
		want   Visibility
	}{
		{"operator open", ContestStatusOpen, Viewer{Privileged: true}, VisibilityRevealed},
		{"operator evaluation", ContestStatusEvaluation, Viewer{Privileged: true}, VisibilityRevealed},
		{"creator open", ContestStatusOpen, Viewer{IsCreator: true}, VisibilityRevealed},
		{"participant open", ContestStatusOpen, Viewer{HasAccess: true}, VisibilityDenied},
		{"creator evaluation", ContestStatusEvaluation, Viewer{IsCreator: true}, VisibilityMasked},
		{"reader evaluation", ContestStatusEvaluation, Viewer{HasAccess: true}, VisibilityMasked},
		{"outsider evaluation", ContestStatusEvaluation, Viewer{}, VisibilityDenied},
		{"reader closed", ContestStatusClosed, Viewer{HasAccess: true}, VisibilityRevealed},
		{"creator closed", ContestStatusClosed, Viewer{IsCreator: true}, VisibilityRevealed},
		{"outsider closed", ContestStatusClosed, Viewer{}, VisibilityDenied},
	}
	for _, tc := range cases {
		if got := ListingVisibility(tc.status, tc.viewer); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStatsCountsActiveDistinctAuthors(t *testing.T) {
	stats := Stats([]Submission{
		{SubmissionID: 1, AuthorID: 5},
		{SubmissionID: 2, AuthorID: 5},
		{SubmissionID: 3, AuthorID: 6},
		{SubmissionID: 4, AuthorID: 7, Tombstoned: true},
	})
	if stats.TextCount != 3 || stats.ParticipantCount != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
