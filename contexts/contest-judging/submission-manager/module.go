package submissionmanager

import (
	"log/slog"

	"inkwell/contexts/contest-judging/submission-manager/adapters/codes"
	httpadapter "inkwell/contexts/contest-judging/submission-manager/adapters/http"
	"inkwell/contexts/contest-judging/submission-manager/adapters/memory"
	"inkwell/contexts/contest-judging/submission-manager/application/commands"
	"inkwell/contexts/contest-judging/submission-manager/application/queries"
	"inkwell/contexts/contest-judging/submission-manager/application/workers"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

type Module struct {
	Handler              httpadapter.Handler
	ContestDeletedWorker workers.ContestDeletedConsumer
	TextDeletedWorker    workers.TextDeletedConsumer
	Store                *memory.Store
}

type Dependencies struct {
	Submissions ports.SubmissionRepository
	Contests    ports.ContestDirectory
	Judges      ports.JudgeDirectory
	Texts       ports.TextCatalog
	Codes       ports.AnonymousCoder
	Locker      ports.ContestLocker
	Clock       ports.Clock
	Subscriber  ports.EventSubscriber
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Codes == nil {
		deps.Codes = codes.UUIDv5Coder{}
	}
	purge := commands.PurgeContestUseCase{
		Submissions: deps.Submissions,
		Logger:      deps.Logger,
	}
	textDeleted := commands.HandleTextDeletedUseCase{
		Submissions: deps.Submissions,
		Contests:    deps.Contests,
		Locker:      deps.Locker,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Submit: commands.SubmitUseCase{
				Submissions: deps.Submissions,
				Contests:    deps.Contests,
				Judges:      deps.Judges,
				Texts:       deps.Texts,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				Logger:      deps.Logger,
			},
			Withdraw: commands.WithdrawUseCase{
				Submissions: deps.Submissions,
				Contests:    deps.Contests,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				Logger:      deps.Logger,
			},
			TextDeleted: textDeleted,
			Purge:       purge,
			ListSubmissions: queries.ListSubmissionsUseCase{
				Submissions: deps.Submissions,
				Contests:    deps.Contests,
				Texts:       deps.Texts,
				Codes:       deps.Codes,
				Logger:      deps.Logger,
			},
			ContestSubmissions: queries.ContestSubmissionsUseCase{
				Submissions: deps.Submissions,
				Codes:       deps.Codes,
				Logger:      deps.Logger,
			},
			ContestStats: queries.ContestStatsUseCase{
				Submissions: deps.Submissions,
				Logger:      deps.Logger,
			},
			Participation: queries.ParticipationUseCase{
				Submissions: deps.Submissions,
			},
			Codes:  deps.Codes,
			Logger: deps.Logger,
		},
		ContestDeletedWorker: workers.ContestDeletedConsumer{
			Subscriber: deps.Subscriber,
			Purge:      purge,
			Logger:     deps.Logger,
		},
		TextDeletedWorker: workers.TextDeletedConsumer{
			Subscriber:  deps.Subscriber,
			TextDeleted: textDeleted,
			Logger:      deps.Logger,
		},
	}
}

// NewInMemoryModule runs the service against its own store. Contest, judge
// and text projections are seeded through the store's Set* methods.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Submissions: store,
		Contests:    store,
		Judges:      store,
		Texts:       store,
		Locker:      store,
		Clock:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
