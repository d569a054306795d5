package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/config"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/events"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/planning"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/server"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/memstore"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store/postgres"
	gestorsync "github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the gestor HTTP and gRPC servers",
	GroupID: "system",
	Args:    cobra.NoArgs,
	// Override PersistentPreRunE so we don't create a client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		seedPath, _ := cmd.Flags().GetString("seed")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		analyticsCfg, err := cfg.Analytics()
		if err != nil {
			return err
		}

		st, err := openStore(context.Background(), cfg, seedPath, logger)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (GESTOR_NATS_URL not set)")
		}

		svc := planning.New(st, publisher,
			planning.WithConfig(analyticsCfg),
			planning.WithLogger(logger),
		)
		planningServer := server.NewPlanningServer(svc, logger)
		grpcServer := server.NewGRPCServer(planningServer, cfg.AuthToken)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			publisher.Close()
			st.Close()
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           planningServer.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSync(cfg, st, logger)

		logger.Info("gestor server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
			"timezone", analyticsCfg.Location.String(),
			"auth", cfg.AuthToken != "",
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// openStore connects to Postgres, or builds an in-memory store for
// memory:// optionally seeded from a JSONL export.
func openStore(ctx context.Context, cfg *config.Config, seedPath string, logger *slog.Logger) (store.Store, error) {
	if !cfg.InMemory() {
		if seedPath != "" {
			return nil, fmt.Errorf("--seed requires GESTOR_DATABASE_URL=%s", config.MemoryDatabaseURL)
		}
		return postgres.New(cfg.DatabaseURL)
	}

	ms := memstore.New()
	logger.Warn("using in-memory store; data is lost on shutdown")
	if seedPath == "" {
		return ms, nil
	}
	f, err := os.Open(seedPath)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	stats, err := gestorsync.ImportJSONL(ctx, ms, f)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", seedPath, err)
	}
	logger.Info("store seeded",
		"file", seedPath,
		"projects", stats.Projects,
		"sprints", stats.Sprints,
		"tasks", stats.Tasks,
		"dependencies", stats.Dependencies,
	)
	return ms, nil
}

// startSync starts the JSONL backup scheduler when a destination is
// configured. It returns nil otherwise.
func startSync(cfg *config.Config, st store.Store, logger *slog.Logger) *gestorsync.Scheduler {
	if cfg.SyncInterval <= 0 || cfg.SyncS3Bucket == "" {
		return nil
	}
	dest, err := gestorsync.NewS3Destination(
		context.Background(),
		cfg.SyncS3Bucket,
		cfg.SyncS3Prefix,
		cfg.SyncS3Region,
		cfg.SyncS3Endpoint,
	)
	if err != nil {
		logger.Error("failed to create S3 sync destination", "err", err)
		return nil
	}
	logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "prefix", cfg.SyncS3Prefix)

	scheduler := gestorsync.NewScheduler(st, []gestorsync.Destination{dest}, cfg.SyncInterval, logger)
	scheduler.Start()
	logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
	return scheduler
}

func init() {
	serveCmd.Flags().String("seed", "", "JSONL export to load into the in-memory store")
}
