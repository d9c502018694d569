package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bryanwahyu/incident-orchestrator/internal/application"
	appanalysis "github.com/bryanwahyu/incident-orchestrator/internal/application/analysis"
	appcases "github.com/bryanwahyu/incident-orchestrator/internal/application/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/config"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/capa"
	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	openaiclient "github.com/bryanwahyu/incident-orchestrator/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/incident-orchestrator/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/incident-orchestrator/internal/infra/db/postgres"
	"github.com/bryanwahyu/incident-orchestrator/internal/infra/docgen"
	"github.com/bryanwahyu/incident-orchestrator/internal/infra/httpserver"
	"github.com/bryanwahyu/incident-orchestrator/internal/infra/similarity/sqlitevec"
	minioStore "github.com/bryanwahyu/incident-orchestrator/internal/infra/storage"
	"github.com/bryanwahyu/incident-orchestrator/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validate error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database per configured driver
	var db *sql.DB
	var caseRepo domain.Repository
	var evidenceRepo evidence.Repository
	var capaRepo capa.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		caseRepo = postgresp.NewCaseRepository(db)
		evidenceRepo = postgresp.NewEvidenceRepository(db)
		capaRepo = postgresp.NewCAPARepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		caseRepo = mysqlp.NewCaseRepository(db)
		evidenceRepo = mysqlp.NewEvidenceRepository(db)
		capaRepo = mysqlp.NewCAPARepository(db)
	}
	defer db.Close()

	// init minio content store
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init error", zap.Error(err))
	}

	// init oracle client
	oracleClient := openaiclient.NewClient(cfg.Oracle.APIKey, cfg.Oracle.Model)
	oracleClient.Timeout = time.Duration(cfg.Oracle.Timeout)

	// init similarity index; the matcher degrades on a nil store
	matcher := &appanalysis.Matcher{Log: logger}
	var simStore *sqlitevec.Store
	if cfg.Similarity.IndexPath != "" {
		embedder := openaiclient.NewEmbeddingClient(cfg.Oracle.APIKey, cfg.Oracle.EmbeddingModel)
		simStore, err = sqlitevec.New(cfg.Similarity.IndexPath, embedder, cfg.Similarity.EmbeddingDims, logger)
		if err != nil {
			logger.Warn("similarity index unavailable, matching disabled", zap.Error(err))
			simStore = nil
		} else {
			defer simStore.Close()
			matcher = &appanalysis.Matcher{
				Store:   simStore,
				TopK:    cfg.Similarity.TopK,
				Timeout: time.Duration(cfg.Similarity.Timeout),
				Log:     logger,
			}
		}
	}

	pipeline := &appanalysis.Pipeline{
		Processor: &appanalysis.Processor{
			Oracle:  oracleClient,
			Content: store,
			Log:     logger,
		},
		Detector:       appanalysis.NewDetector(0),
		Matcher:        matcher,
		MaxConcurrency: cfg.Oracle.MaxConcurrency,
		Log:            logger,
	}

	svc := &appcases.Service{
		Cases:    caseRepo,
		Evidence: evidenceRepo,
		Content:  store,
		Pipeline: pipeline,
		Reports:  docgen.New(store, logger),
		CAPA:     capaRepo,
		Clock:    application.SystemClock{},
		Log:      logger,
	}
	if simStore != nil {
		svc.Index = simStore
	}

	checkers := map[string]middleware.HealthChecker{
		"database":     &middleware.DatabaseHealthChecker{DB: db},
		"object_store": middleware.CheckerFunc(store.Ping),
	}
	if simStore != nil {
		checkers["similarity_index"] = middleware.CheckerFunc(simStore.Ping)
	}

	mux := chi.NewRouter()
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RequestLogger(logger))
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		mux.Use(middleware.RequireValidTenant)
	}
	mux.Mount("/", httpserver.NewRouter(svc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // investigations run synchronously
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
