package votingengine

import (
	"log/slog"

	httpadapter "inkwell/contexts/contest-judging/voting-engine/adapters/http"
	"inkwell/contexts/contest-judging/voting-engine/adapters/memory"
	"inkwell/contexts/contest-judging/voting-engine/application/commands"
	"inkwell/contexts/contest-judging/voting-engine/application/queries"
	"inkwell/contexts/contest-judging/voting-engine/application/workers"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

type Module struct {
	Handler              httpadapter.Handler
	StatusChangedWorker  workers.StatusChangedConsumer
	ContestDeletedWorker workers.ContestDeletedConsumer
	Store                *memory.Store
}

type Dependencies struct {
	Votes       ports.VoteRepository
	Rankings    ports.RankingRepository
	Cache       ports.RankingCache
	Contests    ports.ContestDirectory
	Submissions ports.SubmissionDirectory
	Judges      ports.JudgeDirectory
	Locker      ports.ContestLocker
	Metrics     ports.Metrics
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Subscriber  ports.EventSubscriber
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	closer := commands.Closer{
		Votes:       deps.Votes,
		Rankings:    deps.Rankings,
		Cache:       deps.Cache,
		Contests:    deps.Contests,
		Submissions: deps.Submissions,
		Judges:      deps.Judges,
		Metrics:     deps.Metrics,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	statusChange := commands.ApplyStatusChangeUseCase{
		Contests: deps.Contests,
		Rankings: deps.Rankings,
		Closer:   closer,
		Locker:   deps.Locker,
		Metrics:  deps.Metrics,
		Logger:   deps.Logger,
	}
	purge := commands.PurgeContestUseCase{
		Votes:  deps.Votes,
		Closer: closer,
		Logger: deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CastVoteSet: commands.CastVoteSetUseCase{
				Votes:       deps.Votes,
				Contests:    deps.Contests,
				Submissions: deps.Submissions,
				Judges:      deps.Judges,
				Closer:      closer,
				Locker:      deps.Locker,
				Metrics:     deps.Metrics,
				Clock:       deps.Clock,
				IDGen:       deps.IDGenerator,
				Logger:      deps.Logger,
			},
			EvaluateClosure: commands.EvaluateClosureUseCase{
				Contests: deps.Contests,
				Closer:   closer,
				Locker:   deps.Locker,
				Logger:   deps.Logger,
			},
			DropVoteSet: commands.DropVoteSetUseCase{
				Votes:  deps.Votes,
				Locker: deps.Locker,
				Logger: deps.Logger,
			},
			StatusChange: statusChange,
			Purge:        purge,
			GetRanking: queries.GetRankingUseCase{
				Votes:       deps.Votes,
				Rankings:    deps.Rankings,
				Cache:       deps.Cache,
				Contests:    deps.Contests,
				Submissions: deps.Submissions,
				Metrics:     deps.Metrics,
				Logger:      deps.Logger,
			},
			GetVoteSet: queries.GetVoteSetUseCase{
				Votes:    deps.Votes,
				Contests: deps.Contests,
				Logger:   deps.Logger,
			},
			VoteLedger: queries.VoteLedgerUseCase{
				Votes: deps.Votes,
			},
			Logger: deps.Logger,
		},
		StatusChangedWorker: workers.StatusChangedConsumer{
			Subscriber:   deps.Subscriber,
			StatusChange: statusChange,
			Logger:       deps.Logger,
		},
		ContestDeletedWorker: workers.ContestDeletedConsumer{
			Subscriber: deps.Subscriber,
			Purge:      purge,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule runs the engine alone. Contests, submissions and judge
// assignments are seeded on the store and CloseContest flips the seeded
// status.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Votes:       store,
		Rankings:    store,
		Contests:    store,
		Submissions: store,
		Judges:      store,
		Locker:      store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
