package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "inkwell/contexts/contest-judging/contest-registry/application"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
)

// UpdateContestCommand patches the fields that are set. ClearEndsAt and
// ClearMinVotes remove the optional values.
type UpdateContestCommand struct {
	ContestID               int64
	Actor                   entities.Actor
	Title                   *string
	Description             *string
	IsPublic                *bool
	PasswordProtected       *bool
	Password                *string
	MinVotesRequired        *int
	ClearMinVotes           bool
	JudgesExcludedAsAuthors *bool
	OneSubmissionPerAuthor  *bool
	EndsAt                  *time.Time
	ClearEndsAt             bool
}

type UpdateContestUseCase struct {
	Contests  ports.ContestRepository
	Passwords ports.PasswordHasher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc UpdateContestUseCase) Execute(ctx context.Context, cmd UpdateContestCommand) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return entities.Contest{}, err
	}
	if !cmd.Actor.CanManage(contest) {
		return entities.Contest{}, domainerrors.ErrForbidden
	}

	if cmd.Title != nil {
		if !entities.ValidTitle(*cmd.Title) {
			return entities.Contest{}, domainerrors.ErrInvalidContestInput
		}
		contest.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.Description != nil {
		contest.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.IsPublic != nil {
		contest.IsPublic = *cmd.IsPublic
	}
	if cmd.ClearMinVotes {
		contest.MinVotesRequired = nil
	} else if cmd.MinVotesRequired != nil {
		if !entities.ValidMinVotes(cmd.MinVotesRequired) {
			return entities.Contest{}, domainerrors.ErrInvalidContestInput
		}
		value := *cmd.MinVotesRequired
		contest.MinVotesRequired = &value
	}
	if cmd.JudgesExcludedAsAuthors != nil {
		contest.JudgesExcludedAsAuthors = *cmd.JudgesExcludedAsAuthors
	}
	if cmd.OneSubmissionPerAuthor != nil {
		contest.OneSubmissionPerAuthor = *cmd.OneSubmissionPerAuthor
	}
	if cmd.ClearEndsAt {
		contest.EndsAt = nil
	} else if cmd.EndsAt != nil {
		contest.EndsAt = normalizeTime(cmd.EndsAt)
	}

	if cmd.PasswordProtected != nil {
		contest.PasswordProtected = *cmd.PasswordProtected
		if !contest.PasswordProtected {
			contest.PasswordHash = ""
		}
	}
	if cmd.Password != nil && contest.PasswordProtected {
		if strings.TrimSpace(*cmd.Password) == "" {
			return entities.Contest{}, domainerrors.ErrInvalidContestInput
		}
		hash, err := uc.Passwords.Hash(*cmd.Password)
		if err != nil {
			return entities.Contest{}, err
		}
		contest.PasswordHash = hash
	}
	if contest.PasswordProtected && contest.PasswordHash == "" {
		return entities.Contest{}, domainerrors.ErrInvalidContestInput
	}

	contest.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Contests.UpdateContest(ctx, contest); err != nil {
		return entities.Contest{}, err
	}

	logger.Info("contest updated",
		"event", "contest_updated",
		"module", "contest-judging/contest-registry",
		"layer", "application",
		"contest_id", contest.ContestID,
		"actor_id", cmd.Actor.UserID,
	)
	return contest, nil
}
