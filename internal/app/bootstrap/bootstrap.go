package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	contestregistry "inkwell/contexts/contest-judging/contest-registry"
	contestbcrypt "inkwell/contexts/contest-judging/contest-registry/adapters/bcrypt"
	contestmemory "inkwell/contexts/contest-judging/contest-registry/adapters/memory"
	contestpostgres "inkwell/contexts/contest-judging/contest-registry/adapters/postgres"
	judgeregistry "inkwell/contexts/contest-judging/judge-registry"
	judgememory "inkwell/contexts/contest-judging/judge-registry/adapters/memory"
	judgepostgres "inkwell/contexts/contest-judging/judge-registry/adapters/postgres"
	submissionmanager "inkwell/contexts/contest-judging/submission-manager"
	submissionmemory "inkwell/contexts/contest-judging/submission-manager/adapters/memory"
	submissionpostgres "inkwell/contexts/contest-judging/submission-manager/adapters/postgres"
	votingengine "inkwell/contexts/contest-judging/voting-engine"
	votingmemory "inkwell/contexts/contest-judging/voting-engine/adapters/memory"
	votingpostgres "inkwell/contexts/contest-judging/voting-engine/adapters/postgres"
	votingredis "inkwell/contexts/contest-judging/voting-engine/adapters/redis"
	"inkwell/internal/platform/cache"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/db"
	"inkwell/internal/platform/httpserver"
	"inkwell/internal/platform/locks"
	"inkwell/internal/platform/messaging"
	"inkwell/internal/platform/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type Modules struct {
	Registry    contestregistry.Module
	Submissions submissionmanager.Module
	Judges      judgeregistry.Module
	Voting      votingengine.Module
}

type contestLocker interface {
	WithContestLock(ctx context.Context, contestID int64, fn func(context.Context) error) error
}

// Runtime holds the wired modules and the infrastructure shared by the api
// and worker processes.
type Runtime struct {
	Config     config.Config
	Modules    *Modules
	Bus        *messaging.Bus
	Metrics    *observability.Metrics
	Prometheus *prometheus.Registry

	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

// Build wires every component. An empty POSTGRES_DSN selects the memory
// stores, which then share one contest lock table.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{
		Config:     cfg,
		Modules:    &Modules{},
		Bus:        messaging.NewBus(logger),
		Prometheus: prometheus.NewRegistry(),
		logger:     logger,
	}
	rt.Metrics = observability.NewMetrics(cfg.ServiceName, rt.Prometheus)

	var (
		registryDeps   contestregistry.Dependencies
		submissionDeps submissionmanager.Dependencies
		judgeDeps      judgeregistry.Dependencies
		votingDeps     votingengine.Dependencies
		locker         contestLocker
		stores         *memoryStores
	)

	if cfg.UsesPostgres() {
		pg, err := db.Connect(cfg.PostgresDSN, db.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		rt.postgres = pg
		if err := db.Migrate(ctx, pg.DB, logger); err != nil {
			_ = rt.Close()
			return nil, err
		}
		locker = db.NewContestLocker(pg.DB, cfg.TxMaxAttempts, logger)

		contestRepo := contestpostgres.NewRepository(pg.DB, logger)
		registryDeps = contestregistry.Dependencies{
			Contests:     contestRepo,
			History:      contestRepo,
			Outbox:       contestRepo,
			OutboxReader: contestRepo,
			Tx:           db.NewTransactor(pg.DB),
			Clock:        contestpostgres.SystemClock{},
			IDGenerator:  contestpostgres.UUIDGenerator{},
		}
		submissionRepo := submissionpostgres.NewRepository(pg.DB, logger)
		submissionDeps = submissionmanager.Dependencies{
			Submissions: submissionRepo,
			Texts:       submissionRepo,
			Clock:       submissionpostgres.SystemClock{},
		}
		judgeDeps = judgeregistry.Dependencies{
			Assignments: judgepostgres.NewRepository(pg.DB, logger),
			Clock:       judgepostgres.SystemClock{},
		}
		voteRepo := votingpostgres.NewRepository(pg.DB, logger)
		votingDeps = votingengine.Dependencies{
			Votes:       voteRepo,
			Rankings:    voteRepo,
			Clock:       votingpostgres.SystemClock{},
			IDGenerator: votingpostgres.UUIDGenerator{},
		}
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory stores",
			"event", "bootstrap_memory_mode",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		locker = locks.NewContestLocks()

		contestStore := contestmemory.NewStore(nil)
		registryDeps = contestregistry.Dependencies{
			Contests:     contestStore,
			History:      contestStore,
			Outbox:       contestStore,
			OutboxReader: contestStore,
			Tx:           contestStore,
			Clock:        contestStore,
			IDGenerator:  contestStore,
		}
		submissionStore := submissionmemory.NewStore()
		submissionDeps = submissionmanager.Dependencies{
			Submissions: submissionStore,
			Texts:       submissionStore,
			Clock:       submissionStore,
		}
		judgeStore := judgememory.NewStore()
		judgeDeps = judgeregistry.Dependencies{
			Assignments: judgeStore,
			Clock:       judgeStore,
		}
		voteStore := votingmemory.NewStore()
		votingDeps = votingengine.Dependencies{
			Votes:       voteStore,
			Rankings:    voteStore,
			Clock:       voteStore,
			IDGenerator: voteStore,
		}
		stores = &memoryStores{
			contests:    contestStore,
			submissions: submissionStore,
			judges:      judgeStore,
			votes:       voteStore,
		}
	}

	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.redis = client
		votingDeps.Cache = votingredis.NewRankingCache(client, cfg.RankingCacheTTL)
	}

	modules := rt.Modules

	registryDeps.Publisher = rt.Bus
	registryDeps.Locker = locker
	registryDeps.Stats = contestStatsBridge{modules: modules}
	registryDeps.Members = contestMembershipBridge{modules: modules}
	registryDeps.Passwords = contestbcrypt.Hasher{}
	registryDeps.Metrics = rt.Metrics
	registryDeps.OutboxBatchSize = cfg.OutboxBatchSize
	registryDeps.Logger = logger
	modules.Registry = contestregistry.NewModule(registryDeps)

	submissionDeps.Contests = submissionContestsBridge{modules: modules}
	submissionDeps.Judges = submissionJudgesBridge{modules: modules}
	submissionDeps.Locker = locker
	submissionDeps.Subscriber = rt.Bus
	submissionDeps.Logger = logger
	modules.Submissions = submissionmanager.NewModule(submissionDeps)

	judgeDeps.Contests = judgeContestsBridge{modules: modules}
	judgeDeps.Votes = judgeVotesBridge{modules: modules}
	judgeDeps.Closure = judgeClosureBridge{modules: modules}
	judgeDeps.Locker = locker
	judgeDeps.Subscriber = rt.Bus
	judgeDeps.Logger = logger
	modules.Judges = judgeregistry.NewModule(judgeDeps)

	votingDeps.Contests = votingContestsBridge{modules: modules}
	votingDeps.Submissions = votingSubmissionsBridge{modules: modules}
	votingDeps.Judges = votingJudgesBridge{modules: modules}
	votingDeps.Locker = locker
	votingDeps.Metrics = rt.Metrics
	votingDeps.Subscriber = rt.Bus
	votingDeps.Logger = logger
	modules.Voting = votingengine.NewModule(votingDeps)

	if stores != nil {
		modules.Registry.Store = stores.contests
		modules.Submissions.Store = stores.submissions
		modules.Judges.Store = stores.judges
		modules.Voting.Store = stores.votes
	}
	return rt, nil
}

// memoryStores are exposed on the modules so tests and local runs can seed
// the text catalog.
type memoryStores struct {
	contests    *contestmemory.Store
	submissions *submissionmemory.Store
	judges      *judgememory.Store
	votes       *votingmemory.Store
}

// StartConsumers subscribes every component consumer to the bus. The
// subscriptions end with ctx.
func (rt *Runtime) StartConsumers(ctx context.Context) error {
	starts := []func(context.Context) error{
		rt.Modules.Submissions.ContestDeletedWorker.Start,
		rt.Modules.Submissions.TextDeletedWorker.Start,
		rt.Modules.Judges.ContestDeletedWorker.Start,
		rt.Modules.Voting.StatusChangedWorker.Start,
		rt.Modules.Voting.ContestDeletedWorker.Start,
	}
	for _, start := range starts {
		if err := start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunLoops runs the expiry sweep and the outbox relay until ctx ends. A
// failed pass is logged and retried on the next tick.
func (rt *Runtime) RunLoops(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return rt.loop(ctx, "expiry_sweep", rt.Config.SweepInterval, rt.Modules.Registry.Handler.Sweeper.RunOnce)
	})
	group.Go(func() error {
		return rt.loop(ctx, "outbox_relay", rt.Config.RelayInterval, rt.Modules.Registry.OutboxRelay.RunOnce)
	})
	return group.Wait()
}

func (rt *Runtime) loop(ctx context.Context, name string, interval time.Duration, runOnce func(context.Context) error) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rt.logger.Info("worker loop started",
		"event", "bootstrap_loop_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"loop", name,
		"interval", interval.String(),
	)
	for {
		if err := runOnce(ctx); err != nil && ctx.Err() == nil {
			rt.logger.Error("worker loop pass failed",
				"event", "bootstrap_loop_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"loop", name,
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (rt *Runtime) Health(ctx context.Context) error {
	if rt.postgres != nil {
		if err := rt.postgres.Ping(ctx); err != nil {
			return err
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) Close() error {
	var errs []error
	if rt.redis != nil {
		errs = append(errs, rt.redis.Close())
	}
	if rt.postgres != nil {
		errs = append(errs, rt.postgres.Close())
	}
	return errors.Join(errs...)
}

type APIApp struct {
	runtime *Runtime
	server  *httpserver.Server
	logger  *slog.Logger
}

type WorkerApp struct {
	runtime *Runtime
	logger  *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.SetupLogger(cfg.ServiceName, cfg.LogLevel).With("process", "api")
	rt, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &APIApp{
		runtime: rt,
		server:  NewServer(rt, normalizeAddr(cfg.HTTPPort)),
		logger:  logger,
	}, nil
}

// NewServer mounts the runtime's modules on the HTTP server.
func NewServer(rt *Runtime, addr string) *httpserver.Server {
	opts := httpserver.Options{
		Registry:    rt.Modules.Registry,
		Submissions: rt.Modules.Submissions,
		Judges:      rt.Modules.Judges,
		Voting:      rt.Modules.Voting,
		Auth:        httpserver.NewAuthenticator(rt.Config.JWTSecret),
		Metrics:     rt.Metrics,
		Health:      rt.Health,
		Logger:      rt.logger,
		Addr:        addr,
	}
	if rt.Config.MetricsEnabled {
		opts.Gatherer = rt.Prometheus
	}
	return httpserver.New(opts)
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.SetupLogger(cfg.ServiceName, cfg.LogLevel).With("process", "worker")
	rt, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &WorkerApp{runtime: rt, logger: logger}, nil
}

// Run serves HTTP. With memory stores there is no separate worker process to
// share state with, so the consumers and loops run here too.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"postgres", a.runtime.Config.UsesPostgres(),
	)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return a.server.Start(ctx) })
	if !a.runtime.Config.UsesPostgres() {
		if err := a.runtime.StartConsumers(ctx); err != nil {
			return err
		}
		group.Go(func() error { return a.runtime.RunLoops(ctx) })
	}
	return group.Wait()
}

func (a *APIApp) Close() error {
	return a.runtime.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.runtime.StartConsumers(ctx); err != nil {
		return err
	}
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.runtime.Config.SweepInterval.String(),
		"relay_interval", w.runtime.Config.RelayInterval.String(),
	)
	return w.runtime.RunLoops(ctx)
}

func (w *WorkerApp) Close() error {
	return w.runtime.Close()
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
