package judgeregistry

import (
	"log/slog"

	httpadapter "inkwell/contexts/contest-judging/judge-registry/adapters/http"
	"inkwell/contexts/contest-judging/judge-registry/adapters/memory"
	"inkwell/contexts/contest-judging/judge-registry/application/commands"
	"inkwell/contexts/contest-judging/judge-registry/application/queries"
	"inkwell/contexts/contest-judging/judge-registry/application/workers"
	"inkwell/contexts/contest-judging/judge-registry/ports"
)

type Module struct {
	Handler              httpadapter.Handler
	ContestDeletedWorker workers.ContestDeletedConsumer
	Store                *memory.Store
}

type Dependencies struct {
	Assignments ports.AssignmentRepository
	Contests    ports.ContestDirectory
	Votes       ports.VoteLedger
	Closure     ports.ClosureTrigger
	Locker      ports.ContestLocker
	Clock       ports.Clock
	Subscriber  ports.EventSubscriber
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	purge := commands.PurgeContestUseCase{
		Assignments: deps.Assignments,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Assign: commands.AssignJudgeUseCase{
				Assignments: deps.Assignments,
				Contests:    deps.Contests,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				Logger:      deps.Logger,
			},
			Unassign: commands.UnassignJudgeUseCase{
				Assignments: deps.Assignments,
				Contests:    deps.Contests,
				Votes:       deps.Votes,
				Closure:     deps.Closure,
				Locker:      deps.Locker,
				Logger:      deps.Logger,
			},
			Purge: purge,
			ListJudges: queries.ListJudgesUseCase{
				Assignments: deps.Assignments,
				Contests:    deps.Contests,
				Logger:      deps.Logger,
			},
			Assignments: queries.AssignmentsUseCase{
				Assignments: deps.Assignments,
			},
			Logger: deps.Logger,
		},
		ContestDeletedWorker: workers.ContestDeletedConsumer{
			Subscriber: deps.Subscriber,
			Purge:      purge,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule runs the registry alone. Contests and cast vote sets are
// seeded on the store; closure is not re-evaluated.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Assignments: store,
		Contests:    store,
		Votes:       store,
		Locker:      store,
		Clock:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
