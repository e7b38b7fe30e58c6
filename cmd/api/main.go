package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medibridge/carepipe/internal/config"
	"github.com/medibridge/carepipe/internal/domain/records"
	"github.com/medibridge/carepipe/internal/infra/httpserver"
	"github.com/medibridge/carepipe/internal/logging"
	"github.com/medibridge/carepipe/internal/middleware"
)

var rootCmd = &cobra.Command{
	Use:           "carepipe",
	Short:         "carepipe - medical record ingestion and AI analysis service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest one local file as a medical record and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var (
	configPath string
	ownerFlag  string
	titleFlag  string
)

func init() {
	// path config.yaml
	def := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", def, "path to config.yaml (env CONFIG_PATH)")

	ingestCmd.Flags().StringVar(&ownerFlag, "owner", "", "owner (patient) id")
	ingestCmd.Flags().StringVar(&titleFlag, "title", "", "record title (defaults to the file name)")
	_ = ingestCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(serveCmd, ingestCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config load: %w", err)
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("logger init: %w", err)
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := httpserver.NewRouter(httpserver.Options{
		Ingest:         a.ingest,
		Analysis:       a.analysis,
		Logger:         log.Named("http"),
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateCapacity:   cfg.RateLimit.Capacity,
		RateRefill:     cfg.RateLimit.RefillRate,
		UploadDir:      cfg.Uploads.TempDir,
		UploadMaxBytes: cfg.Uploads.MaxBytes,
		Checkers:       map[string]middleware.HealthChecker{"database": &middleware.DatabaseHealthChecker{DB: a.db}},
		Snapshot:       a.policy.Snapshot,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// WriteTimeout must cover an upload plus OCR, or a model call.
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.Timeouts.Model + cfg.Timeouts.OCR + cfg.Timeouts.Persist,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// graceful shutdown
	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := buildApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	payload, err := records.Spool(f, cfg.Uploads.TempDir, cfg.Uploads.MaxBytes)
	_ = f.Close()
	if err != nil {
		return err
	}

	rec, err := a.ingest.Ingest(cmd.Context(), records.UploadRequest{
		OwnerID:  ownerFlag,
		Title:    middleware.SanitizeTitle(titleFlag),
		FileName: filepath.Base(args[0]),
		Payload:  payload,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
