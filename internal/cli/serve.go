package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-grid/internal/api/controller"
	"ctchen222/tictactoe-grid/internal/api/service"
	"ctchen222/tictactoe-grid/internal/api/token"
	"ctchen222/tictactoe-grid/internal/config"
	"ctchen222/tictactoe-grid/internal/db"
	"ctchen222/tictactoe-grid/internal/logger"
	"ctchen222/tictactoe-grid/internal/repository"
	"ctchen222/tictactoe-grid/internal/server"
	"ctchen222/tictactoe-grid/internal/telemetry"
	"ctchen222/tictactoe-grid/web"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const janitorInterval = time.Minute

func Serve() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the game server",
		Long: heredoc.Doc(`serve starts the HTTP server that hosts the game page,
		its websocket endpoint and the session REST API.

		Configuration is read from the file given with --config, or from
		tictactoe/config.yml under the XDG config directories, and may be
		overridden with environment variables.`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)

	sessions, closeStore, err := newSessionRepository(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	if purger, ok := sessions.(repository.Purger); ok {
		go repository.RunJanitor(ctx, purger, janitorInterval)
	}

	sessionService, err := service.NewSessionService(sessions, cfg.Game.MaxBoardSize)
	if err != nil {
		return err
	}
	sessionController := controller.NewSessionController(sessionService, token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))

	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(sessionService, sessionController, web.Static())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr, "store", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}

// newSessionRepository opens the configured session store. The returned
// func releases its connections.
func newSessionRepository(ctx context.Context, cfg config.Store) (repository.SessionRepository, func(), error) {
	switch cfg.Backend {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		return repository.NewRedisSessionRepository(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil

	case config.StoreSQLite:
		DB, err := db.SQLiteConnect(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sqlite db connection: %w", err)
		}
		if err := db.InitializeDB(ctx, DB); err != nil {
			DB.Close()
			return nil, nil, fmt.Errorf("failed to initialize sqlite db: %w", err)
		}
		return repository.NewSQLiteSessionRepository(DB, cfg.SessionTTL), func() { DB.Close() }, nil
	}

	return repository.NewMemorySessionRepository(cfg.SessionTTL), func() {}, nil
}
