package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	intconfig "simplecrud/internal/config"
	intdb "simplecrud/internal/db"
	"simplecrud/internal/events"
	router "simplecrud/internal/http"
	"simplecrud/internal/utils"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "simplecrud",
		Short:        "Generic REST CRUD API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml, toml or json)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), configPath)
		},
	})
	return root
}

func setup(ctx context.Context, configPath string) (intconfig.Env, error) {
	env, err := intconfig.LoadEnv(configPath)
	if err != nil {
		return env, err
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	if _, err := utils.InitLogger(env.LogLevel, gin.Mode() == gin.DebugMode); err != nil {
		return env, fmt.Errorf("init logger: %w", err)
	}
	if _, err := intconfig.ConnectDB(ctx, env); err != nil {
		return env, err
	}
	return env, nil
}

func runMigrate(ctx context.Context, configPath string) error {
	env, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()
	defer func() { _ = utils.Logger().Sync() }()

	created, err := intdb.Migrate(ctx, intconfig.DB, intdb.For(env.DBDriver))
	if err != nil {
		return err
	}
	utils.LogEvent("", "db", "migrate", "migration finished", zap.Strings("created", created))
	return nil
}

func runServe(ctx context.Context, configPath string) error {
	env, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()
	defer func() { _ = utils.Logger().Sync() }()
	log := utils.Logger()

	bus := events.NewBus()
	bus.Subscribe(events.AuditListener())
	bus.Subscribe(events.MetricsListener())
	if env.NATSURL != "" {
		nc, err := nats.Connect(env.NATSURL, nats.Name("simplecrud"))
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer nc.Drain()
		bus.Subscribe(events.NATSListener(nc, env.NATSSubjectPrefix), events.AfterKinds...)
	}

	r := router.NewRouter(router.Deps{Env: env, DB: intconfig.DB, Events: bus})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           otelhttp.NewHandler(r, "simplecrud"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
