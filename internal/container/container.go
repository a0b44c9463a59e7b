package container

import (
	"context"
	"fmt"
	"io"

	"recoverypilot/adapters/bolt"
	"recoverypilot/adapters/excel"
	"recoverypilot/adapters/memory"
	"recoverypilot/adapters/postgres"
	"recoverypilot/adapters/rng"
	"recoverypilot/app"
	"recoverypilot/internal"
	"recoverypilot/internal/config"
	"recoverypilot/internal/errors"
	"recoverypilot/internal/migration"
	"recoverypilot/internal/testkit"
	"recoverypilot/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB     *sqlx.DB
	Store  ports.KVStore
	Corpus ports.CorpusSupplier

	Engine *app.ClusteringEngine

	closers []io.Closer
}

// New wires the store, corpus and engine selected by cfg
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initStore(ctx); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	c.initCorpus()

	engine, err := app.NewClusteringEngine(ctx, c.Corpus, c.Store, rng.NewSource(), EngineConfig(cfg.Clustering), logger)
	if err != nil {
		c.Shutdown(ctx)
		return nil, errors.Wrap(err, "failed to create clustering engine")
	}
	c.Engine = engine

	return c, nil
}

// EngineConfig maps the clustering section onto engine parameters
func EngineConfig(cfg config.ClusteringConfig) app.EngineConfig {
	return app.EngineConfig{
		DefaultK:             cfg.DefaultK,
		MaxIterations:        cfg.MaxIterations,
		OptimalKIterations:   cfg.OptimalKIterations,
		Seed:                 cfg.Seed,
		SilhouetteSampleSize: cfg.SilhouetteSampleSize,
		OptimalKWorkers:      cfg.OptimalKWorkers,
	}
}

func (c *Container) initStore(ctx context.Context) error {
	switch c.Config.Store.Driver {
	case config.StoreBolt:
		store, err := bolt.NewKVStore(c.Config.Store.BoltPath)
		if err != nil {
			return errors.DatabaseError("failed to open bolt store", err)
		}
		c.Store = store
		c.closers = append(c.closers, store)
		c.Logger.Info("Using bolt store at %s", c.Config.Store.BoltPath)

	case config.StorePostgres:
		db, err := sqlx.Connect("postgres", c.Config.Store.DatabaseURL)
		if err != nil {
			return errors.DatabaseError("failed to connect to database", err)
		}
		c.DB = db
		c.closers = append(c.closers, db)

		if err := migration.NewRunner().Run(ctx, db); err != nil {
			return errors.Wrap(err, "database migration failed")
		}
		c.Store = postgres.NewKVStore(db)
		c.Logger.Info("Using postgres store")

	default:
		c.Store = memory.NewKVStore()
		c.Logger.Info("Using in-memory store; added patients are lost on restart")
	}
	return nil
}

func (c *Container) initCorpus() {
	if c.Config.Corpus.File != "" {
		c.Corpus = excel.NewCorpusReader(c.Config.Corpus.File, c.Logger)
		c.Logger.Info("Using corpus file %s", c.Config.Corpus.File)
		return
	}

	generatorConfig := testkit.DefaultPatientConfig()
	generatorConfig.PatientCount = c.Config.Corpus.SyntheticPatients
	generatorConfig.Seed = c.Config.Corpus.SyntheticSeed
	c.Corpus = testkit.NewPatientGenerator(generatorConfig)
	c.Logger.Info("No corpus file configured, using %d synthetic patients", generatorConfig.PatientCount)
}

// Shutdown releases the store in reverse order of acquisition
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
