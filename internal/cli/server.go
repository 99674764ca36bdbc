package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizshare/internal/app"
	"quizshare/internal/config"
	"quizshare/internal/infra/memory"
	"quizshare/internal/infra/postgres"
	infraredis "quizshare/internal/infra/redis"
	"quizshare/internal/share"
	transport "quizshare/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (overrides config and PORT)")
	return cmd
}

// repositories is the storage wiring chosen by storage.backend.
type repositories struct {
	quizzes  app.QuizRepository
	results  app.ResultRepository
	attempts app.AttemptRepository
	close    func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	renderer, err := share.NewRenderer(cfg.Share.Renderer)
	if err != nil {
		return err
	}

	service := app.NewQuizService(repos.quizzes, repos.results, repos.attempts,
		app.WithLogger(logger),
		app.WithPublicOrigin(cfg.Server.Origin),
		app.WithAttemptTTL(config.TTLDuration(cfg.Attempt.TTL, app.DefaultAttemptTTL)),
	)
	handler := transport.NewRouter(
		transport.NewQuizHandler(service, renderer, cfg.Share.Size, logger),
		transport.NewWSHandler(service, logger),
		logger,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service",
			zap.String("port", finalPort),
			zap.String("backend", cfg.Storage.Backend),
			zap.String("origin", cfg.Server.Origin),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories, error) {
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	attemptTTL := config.TTLDuration(cfg.Attempt.TTL, app.DefaultAttemptTTL)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return repositories{}, err
		}
	}
	closeRedis := func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}

	attempts := app.AttemptRepository(memory.NewAttemptStore())
	if redisClient != nil {
		attempts = infraredis.NewAttemptStore(redisClient, attemptTTL)
	}

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		return repositories{
			quizzes:  memory.NewQuizCache(infraredis.NewQuizStore(redisClient), quizTTL),
			results:  infraredis.NewResultStore(redisClient),
			attempts: attempts,
			close:    closeRedis,
		}, nil

	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			closeRedis()
			return repositories{}, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			closeRedis()
			return repositories{}, err
		}
		var quizzes app.QuizRepository = postgres.NewQuizStore(pool)
		if redisClient != nil {
			quizzes = infraredis.NewQuizCache(redisClient, quizzes, config.TTLDuration(cfg.Redis.TTL, quizTTL))
		} else {
			quizzes = memory.NewQuizCache(quizzes, quizTTL)
		}
		return repositories{
			quizzes:  quizzes,
			results:  postgres.NewResultStore(pool),
			attempts: attempts,
			close: func() {
				pool.Close()
				closeRedis()
			},
		}, nil

	default:
		return repositories{
			quizzes:  memory.NewQuizStore(),
			results:  memory.NewResultStore(),
			attempts: attempts,
			close:    closeRedis,
		}, nil
	}
}
