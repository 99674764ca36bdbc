package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizshare/internal/app"
	"quizshare/internal/domain"
	"quizshare/internal/infra/postgres"
	pgmigrations "quizshare/internal/infra/postgres/migrations"
	infraredis "quizshare/internal/infra/redis"
)

func TestSubmitResultEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	quizzes := infraredis.NewQuizCache(redisClient, postgres.NewQuizStore(pool), 5*time.Minute)
	attempts := infraredis.NewAttemptStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(quizzes, postgres.NewResultStore(pool), attempts)

	quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Title: "Arithmetic",
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectOptionIndex: 1},
			{Text: "What is 3 * 3?", Options: []string{"6", "8", "9", "12"}, CorrectOptionIndex: 2},
		},
	})
	require.NoError(t, err)

	// Duplicate ids are rejected by the primary key.
	assert.ErrorIs(t, postgres.NewQuizStore(pool).CreateQuiz(ctx, quiz), domain.ErrAlreadyExists)

	_, err = service.SubmitResult(ctx, app.SubmitResultInput{QuizID: quiz.ID, UserName: "Alice", Answers: []int{1, 0}, TimeElapsed: 30})
	require.NoError(t, err)
	_, err = service.SubmitResult(ctx, app.SubmitResultInput{QuizID: quiz.ID, UserName: "Bob", Answers: []int{1, 2}, TimeElapsed: 50})
	require.NoError(t, err)

	lb, err := service.Leaderboard(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "Bob", lb.Entries[0].Result.UserName)
	assert.Equal(t, []int{1, 2}, lb.Entries[0].Result.Answers)
	assert.Equal(t, 75, lb.Stats.AverageScorePercent)

	summaries, err := service.ListQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Participants)

	_, err = service.GetQuiz(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)

	// Results only weakly reference their quiz and survive as orphans.
	_, err = pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, quiz.ID)
	require.NoError(t, err)
	orphans, err := postgres.NewResultStore(pool).ListResults(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, orphans, 2)

	// A result for a quiz id the table never held is accepted too.
	require.NoError(t, postgres.NewResultStore(pool).CreateResult(ctx, domain.Result{
		ID: "orphan-1", QuizID: "never-created", UserName: "Eve", Answers: []int{0},
		Score: 0, TotalQuestions: 1, SubmittedAt: time.Now().UTC(),
	}))
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
