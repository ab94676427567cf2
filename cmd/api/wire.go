package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bryanwahyu/rxscan/internal/config"
	domai "github.com/bryanwahyu/rxscan/internal/domain/ai"
	"github.com/bryanwahyu/rxscan/internal/domain/failures"
	"github.com/bryanwahyu/rxscan/internal/domain/substances"
	"github.com/bryanwahyu/rxscan/internal/infra/ai/gemini"
	"github.com/bryanwahyu/rxscan/internal/infra/ai/openai"
	"github.com/bryanwahyu/rxscan/internal/infra/catalog"
	mysqlp "github.com/bryanwahyu/rxscan/internal/infra/db/mysql"
	"github.com/bryanwahyu/rxscan/internal/infra/db/postgres"
	minioStore "github.com/bryanwahyu/rxscan/internal/infra/storage"
	"github.com/bryanwahyu/rxscan/internal/middleware"
)

// catalogRepo is a catalog that can report its own health.
type catalogRepo interface {
	substances.Repository
	middleware.HealthChecker
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	d := cfg.Database
	var (
		db  *sql.DB
		err error
	)
	switch d.Driver {
	case "":
		return nil, nil
	case "mysql":
		db, err = mysqlp.Connect(ctx, mysqlp.DSN(d.Host, d.Port, d.User, d.Password, d.Name))
		if err == nil {
			err = mysqlp.EnsureSchema(ctx, db)
		}
	case "postgres":
		db, err = postgres.Connect(ctx, cfg.PostgresDSN())
		if err == nil {
			err = postgres.EnsureSchema(ctx, db)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", d.Driver)
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("%s: %w", d.Driver, err)
	}
	return db, nil
}

func substanceRepo(cfg *config.Config, db *sql.DB) substances.Repository {
	if cfg.Database.Driver == "postgres" {
		return postgres.NewSubstanceRepository(db)
	}
	return mysqlp.NewSubstanceRepository(db)
}

func failureRepo(cfg *config.Config, db *sql.DB) failures.Repository {
	switch {
	case db == nil:
		return nil
	case cfg.Database.Driver == "postgres":
		return postgres.NewFailureRepository(db)
	default:
		return mysqlp.NewFailureRepository(db)
	}
}

// openCatalog serves the substance catalog from the CSV file or from the
// database. With seed enabled the CSV rows are upserted into the database
// first.
func openCatalog(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (catalogRepo, error) {
	c := cfg.Catalog
	loadCSV := func() ([]substances.Substance, error) {
		return catalog.LoadCSV(c.CSVPath, catalog.Encoding(c.Encoding))
	}

	if c.Source == "csv" {
		items, err := loadCSV()
		if err != nil {
			// An unloaded catalog is reported per request, as the upload
			// endpoint must answer with its own message.
			logger.Error("could not load substance catalog", "path", c.CSVPath, "error", err)
		}
		logger.Info("substance catalog loaded", "source", "csv", "count", len(items))
		return catalog.NewMemory(items), nil
	}

	repo := substanceRepo(cfg, db)
	if c.Seed {
		items, err := loadCSV()
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		if err := repo.Upsert(ctx, items); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info("substance catalog seeded", "count", len(items))
	}
	return catalog.NewCached(repo, c.CacheTTL), nil
}

// openLLM returns nil when no API key is configured.
func openLLM(ctx context.Context, cfg *config.Config) (domai.Client, error) {
	l := cfg.LLM
	if l.APIKey == "" {
		return nil, nil
	}
	switch l.Provider {
	case "openai":
		if l.BaseURL != "" {
			return openai.NewClientWithBaseURL(l.APIKey, l.Model, l.BaseURL), nil
		}
		return openai.NewClient(l.APIKey, l.Model), nil
	case "gemini", "":
		return gemini.NewClient(ctx, l.APIKey, l.Model)
	}
	return nil, fmt.Errorf("unknown llm provider %q", l.Provider)
}

func openStore(ctx context.Context, cfg *config.Config) (*minioStore.Store, error) {
	m := cfg.Minio
	if !m.Enabled {
		return nil, nil
	}
	return minioStore.New(ctx,
		m.Endpoint,
		m.Region,
		m.BucketName,
		m.AccessKey,
		m.SecretKey,
		m.UseSSL,
	)
}
