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

type CreateContestCommand struct {
	Actor                   entities.Actor
	Title                   string
	Description             string
	IsPublic                bool
	PasswordProtected       bool
	Password                string
	MinVotesRequired        *int
	JudgesExcludedAsAuthors bool
	OneSubmissionPerAuthor  bool
	EndsAt                  *time.Time
}

type CreateContestUseCase struct {
	Contests  ports.ContestRepository
	Passwords ports.PasswordHasher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc CreateContestUseCase) Execute(ctx context.Context, cmd CreateContestCommand) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.Actor.UserID == 0 {
		return entities.Contest{}, domainerrors.ErrForbidden
	}
	if !entities.ValidTitle(cmd.Title) || !entities.ValidMinVotes(cmd.MinVotesRequired) {
		return entities.Contest{}, domainerrors.ErrInvalidContestInput
	}

	now := uc.Clock.Now().UTC()
	contest := entities.Contest{
		Title:                   strings.TrimSpace(cmd.Title),
		Description:             strings.TrimSpace(cmd.Description),
		CreatorID:               cmd.Actor.UserID,
		Status:                  entities.ContestStatusOpen,
		IsPublic:                cmd.IsPublic,
		PasswordProtected:       cmd.PasswordProtected,
		MinVotesRequired:        cmd.MinVotesRequired,
		JudgesExcludedAsAuthors: cmd.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  cmd.OneSubmissionPerAuthor,
		EndsAt:                  normalizeTime(cmd.EndsAt),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if contest.PasswordProtected {
		if strings.TrimSpace(cmd.Password) == "" {
			return entities.Contest{}, domainerrors.ErrInvalidContestInput
		}
		hash, err := uc.Passwords.Hash(cmd.Password)
		if err != nil {
			return entities.Contest{}, err
		}
		contest.PasswordHash = hash
	}

	created, err := uc.Contests.CreateContest(ctx, contest)
	if err != nil {
		return entities.Contest{}, err
	}

	logger.Info("contest created",
		"event", "contest_created",
		"module", "contest-judging/contest-registry",
		"layer", "application",
		"contest_id", created.ContestID,
		"creator_id", created.CreatorID,
		"contest_type", created.Type(),
	)
	return created, nil
}

func normalizeTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}
