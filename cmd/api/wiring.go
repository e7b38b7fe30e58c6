package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/medibridge/carepipe/internal/application"
	appanalysis "github.com/medibridge/carepipe/internal/application/analysis"
	"github.com/medibridge/carepipe/internal/application/degrade"
	appingest "github.com/medibridge/carepipe/internal/application/ingest"
	"github.com/medibridge/carepipe/internal/config"
	"github.com/medibridge/carepipe/internal/domain/records"
	openaiClient "github.com/medibridge/carepipe/internal/infra/ai/openai"
	"github.com/medibridge/carepipe/internal/infra/ai/prompt"
	mysqlp "github.com/medibridge/carepipe/internal/infra/db/mysql"
	postgresp "github.com/medibridge/carepipe/internal/infra/db/postgres"
	sqlitep "github.com/medibridge/carepipe/internal/infra/db/sqlite"
	"github.com/medibridge/carepipe/internal/infra/ocr"
	minioStore "github.com/medibridge/carepipe/internal/infra/storage"
	"github.com/medibridge/carepipe/internal/middleware"
)

// app holds the wired services shared by the serve and ingest commands.
type app struct {
	db       *sql.DB
	policy   degrade.Policy
	ingest   *appingest.Service
	analysis *appanalysis.Service
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, repo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := degrade.FromConfig(cfg)

	// init minio
	var (
		store  records.ObjectStore
		signer records.URLSigner
	)
	if !policy.ShouldUseMock(degrade.Storage) {
		s, err := minioStore.New(ctx, minioStore.Options{
			Endpoint:      cfg.Minio.Endpoint,
			Region:        cfg.Minio.Region,
			Bucket:        cfg.Minio.BucketName,
			AccessKey:     cfg.Minio.AccessKey,
			SecretKey:     cfg.Minio.SecretKey,
			UseSSL:        cfg.Minio.UseSSL,
			Timeout:       cfg.Timeouts.Storage,
			PresignExpiry: cfg.Minio.PresignExpiry,
		})
		if err != nil {
			log.Warn("object storage unreachable at startup, storing uploads as unavailable", zap.Error(err))
			policy = policy.Without(degrade.Storage)
		} else {
			store, signer = s, s
		}
	}

	extractor := ocr.NewClient(cfg.OCR.BaseURL, cfg.Timeouts.OCR)
	model := openaiClient.NewClient(openaiClient.Options{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		VisionModel: cfg.OpenAI.VisionModel,
		Timeout:     cfg.Timeouts.Model,
	})

	recorder := middleware.PipelineRecorder{}
	ingestSvc := &appingest.Service{
		Repo:           repo,
		Store:          store,
		Extractor:      extractor,
		Policy:         policy,
		Clock:          application.SystemClock{},
		Metrics:        recorder,
		Logger:         log.Named("ingest"),
		PersistTimeout: cfg.Timeouts.Persist,
	}
	analysisSvc := appanalysis.NewService(model, prompt.Clinical{}, repo, policy, log.Named("analysis"))
	analysisSvc.Signer = signer
	analysisSvc.Metrics = recorder
	analysisSvc.MaxHistoryBytes = cfg.Analysis.MaxHistoryBytes

	for svc, mode := range policy.Snapshot() {
		log.Info("external service mode", zap.String("service", svc), zap.String("mode", mode))
	}

	return &app{db: db, policy: policy, ingest: ingestSvc, analysis: analysisSvc}, nil
}

// openRepository connects the configured driver and ensures the schema.
func openRepository(ctx context.Context, cfg *config.Config) (*sql.DB, records.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, mysqlp.NewRecordRepository(db), nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := postgresp.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, postgresp.NewRecordRepository(db), nil
	case "sqlite":
		repo, err := sqlitep.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo.DB(), repo, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}
