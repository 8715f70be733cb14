package entities

type Visibility int

const (
	VisibilityDenied Visibility = iota
	// VisibilityMasked shows submissions under their anonymous codes.
	VisibilityMasked
	VisibilityRevealed
)

type Viewer struct {
	Privileged bool
	IsCreator  bool
	HasAccess  bool
}

// ListingVisibility decides how a viewer sees the submissions of a contest.
// While the contest is open only the creator and operators see the list; the
// creator loses real identities once judging starts and gets them back when
// the contest closes.
func ListingVisibility(status ContestStatus, viewer Viewer) Visibility {
	if viewer.Privileged {
		return VisibilityRevealed
	}
	switch status {
	case ContestStatusOpen:
		if viewer.IsCreator {
			return VisibilityRevealed
		}
		return VisibilityDenied
	case ContestStatusEvaluation:
		if viewer.IsCreator || viewer.HasAccess {
			return VisibilityMasked
		}
		return VisibilityDenied
	case ContestStatusClosed:
		if viewer.IsCreator || viewer.HasAccess {
			return VisibilityRevealed
		}
		return VisibilityDenied
	default:
		return VisibilityDenied
	}
}
