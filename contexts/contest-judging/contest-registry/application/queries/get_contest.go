package queries

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/contest-registry/application"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
)

type GetContestUseCase struct {
	Contests ports.ContestRepository
	Logger   *slog.Logger
}

func (uc GetContestUseCase) Execute(ctx context.Context, contestID int64) (entities.Contest, error) {
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return entities.Contest{}, err
	}
	return contest, nil
}

type AccessQuery struct {
	ContestID int64
	Actor     entities.Actor
	Password  string
}

// AccessUseCase decides whether a caller may see a contest: operators,
// the creator and members always can, password-protected contests need the
// password, other contests need to be public.
type AccessUseCase struct {
	Contests  ports.ContestRepository
	Members   ports.MembershipReader
	Passwords ports.PasswordHasher
	Logger    *slog.Logger
}

func (uc AccessUseCase) Authorize(ctx context.Context, query AccessQuery) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	contest, err := uc.Contests.GetContest(ctx, query.ContestID)
	if err != nil {
		return entities.Contest{}, err
	}
	actor := query.Actor
	if actor.System || actor.Privileged || contest.IsCreator(actor.UserID) {
		return contest, nil
	}
	if actor.UserID != 0 && uc.Members != nil {
		member, err := uc.Members.IsMember(ctx, contest.ContestID, actor.UserID)
		if err != nil {
			return entities.Contest{}, err
		}
		if member {
			return contest, nil
		}
	}
	if contest.PasswordProtected {
		if query.Password == "" {
			return entities.Contest{}, domainerrors.ErrPasswordRequired
		}
		if !uc.Passwords.Compare(contest.PasswordHash, query.Password) {
			logger.Warn("contest password rejected",
				"event", "contest_password_rejected",
				"module", "contest-judging/contest-registry",
				"layer", "application",
				"contest_id", contest.ContestID,
				"user_id", actor.UserID,
			)
			return entities.Contest{}, domainerrors.ErrInvalidPassword
		}
		return contest, nil
	}
	if contest.IsPublic {
		return contest, nil
	}
	return entities.Contest{}, domainerrors.ErrForbidden
}

// HasAccess is Authorize reduced to a boolean for callers outside the
// registry. Only unexpected failures are returned as errors.
func (uc AccessUseCase) HasAccess(ctx context.Context, query AccessQuery) (bool, error) {
	_, err := uc.Authorize(ctx, query)
	switch {
	case err == nil:
		return true, nil
	case isAccessDenied(err):
		return false, nil
	default:
		return false, err
	}
}

type ContestDetail struct {
	Contest entities.Contest
	Stats   entities.ContestStats
}

type GetContestDetailUseCase struct {
	Access AccessUseCase
	Stats  ports.ContestStatsReader
	Logger *slog.Logger
}

func (uc GetContestDetailUseCase) Execute(ctx context.Context, query AccessQuery) (ContestDetail, error) {
	contest, err := uc.Access.Authorize(ctx, query)
	if err != nil {
		return ContestDetail{}, err
	}
	detail := ContestDetail{Contest: contest}
	if uc.Stats != nil {
		stats, err := uc.Stats.ContestStats(ctx, []int64{contest.ContestID})
		if err != nil {
			return ContestDetail{}, err
		}
		detail.Stats = stats[contest.ContestID]
	}
	return detail, nil
}

func isAccessDenied(err error) bool {
	switch err {
	case domainerrors.ErrForbidden, domainerrors.ErrPasswordRequired, domainerrors.ErrInvalidPassword:
		return true
	default:
		return false
	}
}
