package contestregistry

import (
	"log/slog"

	bcryptadapter "inkwell/contexts/contest-judging/contest-registry/adapters/bcrypt"
	httpadapter "inkwell/contexts/contest-judging/contest-registry/adapters/http"
	"inkwell/contexts/contest-judging/contest-registry/adapters/memory"
	"inkwell/contexts/contest-judging/contest-registry/application/commands"
	"inkwell/contexts/contest-judging/contest-registry/application/queries"
	"inkwell/contexts/contest-judging/contest-registry/application/workers"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	"inkwell/contexts/contest-judging/contest-registry/ports"

	"golang.org/x/crypto/bcrypt"
)

type Module struct {
	Handler     httpadapter.Handler
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Dependencies struct {
	Contests        ports.ContestRepository
	History         ports.HistoryRepository
	Outbox          ports.OutboxWriter
	OutboxReader    ports.OutboxRepository
	Publisher       ports.EventPublisher
	Tx              ports.Transactor
	Locker          ports.ContestLocker
	Stats           ports.ContestStatsReader
	Members         ports.MembershipReader
	Passwords       ports.PasswordHasher
	Metrics         ports.Metrics
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	SweepBatchSize  int
	OutboxBatchSize int
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	transition := commands.TransitionUseCase{
		Contests: deps.Contests,
		History:  deps.History,
		Outbox:   deps.Outbox,
		Tx:       deps.Tx,
		Locker:   deps.Locker,
		Metrics:  deps.Metrics,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	access := queries.AccessUseCase{
		Contests:  deps.Contests,
		Members:   deps.Members,
		Passwords: deps.Passwords,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateContest: commands.CreateContestUseCase{
				Contests:  deps.Contests,
				Passwords: deps.Passwords,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			UpdateContest: commands.UpdateContestUseCase{
				Contests:  deps.Contests,
				Passwords: deps.Passwords,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			Transition: transition,
			DeleteContest: commands.DeleteContestUseCase{
				Contests: deps.Contests,
				Outbox:   deps.Outbox,
				Tx:       deps.Tx,
				Clock:    deps.Clock,
				IDGen:    deps.IDGenerator,
				Logger:   deps.Logger,
			},
			GetContest: queries.GetContestUseCase{
				Contests: deps.Contests,
				Logger:   deps.Logger,
			},
			Access: access,
			GetContestDetail: queries.GetContestDetailUseCase{
				Access: access,
				Stats:  deps.Stats,
				Logger: deps.Logger,
			},
			ListContestCards: queries.ListContestCardsUseCase{
				Contests: deps.Contests,
				Stats:    deps.Stats,
				Logger:   deps.Logger,
			},
			ListHistory: queries.ListHistoryUseCase{
				Contests: deps.Contests,
				History:  deps.History,
				Logger:   deps.Logger,
			},
			Sweeper: workers.ExpirySweeper{
				Contests:   deps.Contests,
				Transition: transition,
				Clock:      deps.Clock,
				BatchSize:  deps.SweepBatchSize,
				Logger:     deps.Logger,
			},
			Logger: deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.OutboxReader,
			Publisher: deps.Publisher,
			Metrics:   deps.Metrics,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the registry to its own memory store. Stats and
// membership come from the store's Set* projections.
func NewInMemoryModule(seed []entities.Contest, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Contests:     store,
		History:      store,
		Outbox:       store,
		OutboxReader: store,
		Tx:           store,
		Locker:       store,
		Stats:        store,
		Members:      store,
		Passwords:    bcryptadapter.Hasher{Cost: bcrypt.MinCost},
		Clock:        store,
		IDGenerator:  store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
