package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizshare/internal/domain"
	"quizshare/internal/share"
)

// QuizRepository persists quiz definitions (in-memory, Redis, Postgres).
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// ResultRepository persists completed attempts. Reads carry no ordering guarantee.
type ResultRepository interface {
	CreateResult(ctx context.Context, result domain.Result) error
	ListResults(ctx context.Context, quizID string) ([]domain.Result, error)
	ListAllResults(ctx context.Context) ([]domain.Result, error)
}

// AttemptRepository tracks in-progress attempts.
type AttemptRepository interface {
	Add(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	// Remove deletes and returns the attempt; only one caller ever gets it.
	Remove(attemptID string) (*Attempt, bool)
}

// CreateQuizInput is the creator form payload.
type CreateQuizInput struct {
	Title       string
	Description string
	Questions   []domain.Question
}

// SubmitResultInput is a completed attempt timed by the client.
type SubmitResultInput struct {
	QuizID      string
	UserName    string
	Answers     []int
	TimeElapsed int
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	quizzes  QuizRepository
	results  ResultRepository
	attempts AttemptRepository
	feed     *feed

	origin     string
	now        func() time.Time
	newID      func() string
	ticker     TickerFunc
	attemptTTL time.Duration
	logger     *zap.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithClock overrides time.Now, mostly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

// WithTicker overrides the one-second attempt timer.
func WithTicker(t TickerFunc) Option {
	return func(s *QuizService) { s.ticker = t }
}

// WithAttemptTTL bounds how long an attempt may stay open. Attempts nobody
// submits or abandons are dropped after ttl; zero disables expiry.
func WithAttemptTTL(ttl time.Duration) Option {
	return func(s *QuizService) { s.attemptTTL = ttl }
}

// WithLogger sets the logger used for background failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

// WithPublicOrigin sets the origin share links are built on.
func WithPublicOrigin(origin string) Option {
	return func(s *QuizService) { s.origin = origin }
}

func NewQuizService(quizzes QuizRepository, results ResultRepository, attempts AttemptRepository, opts ...Option) *QuizService {
	s := &QuizService{
		quizzes:    quizzes,
		results:    results,
		attempts:   attempts,
		feed:       newFeed(),
		origin:     "http://localhost:8080",
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
		ticker:     SecondTicker,
		attemptTTL: DefaultAttemptTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQuiz validates the draft and stores it. Nothing is written when
// validation fails.
func (s *QuizService) CreateQuiz(ctx context.Context, in CreateQuizInput) (domain.Quiz, error) {
	quiz := domain.NormalizeQuiz(domain.Quiz{
		Title:       in.Title,
		Description: in.Description,
		Questions:   in.Questions,
	})
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}

	quiz.ID = s.newID()
	quiz.CreatedAt = s.now().UTC()
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = s.newID()
		}
	}

	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	s.logger.Info("quiz created", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// GetQuiz returns the full quiz, including correct answers.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// ListQuizzes returns every quiz, newest first, with its participant count
// and average score.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	results, err := s.results.ListAllResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	byQuiz := make(map[string][]domain.Result)
	for _, r := range results {
		byQuiz[r.QuizID] = append(byQuiz[r.QuizID], r)
	}

	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		stats := Summarize(byQuiz[q.ID], len(q.Questions))
		summaries = append(summaries, domain.QuizSummary{
			Quiz:                q,
			Participants:        stats.Participants,
			AverageScorePercent: stats.AverageScorePercent,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Quiz.CreatedAt.After(summaries[j].Quiz.CreatedAt)
	})
	return summaries, nil
}

// SubmitResult scores a completed attempt and stores it once.
func (s *QuizService) SubmitResult(ctx context.Context, in SubmitResultInput) (domain.Result, error) {
	if err := domain.ValidateUserName(in.UserName); err != nil {
		return domain.Result{}, err
	}
	if err := domain.ValidateElapsed(in.TimeElapsed); err != nil {
		return domain.Result{}, err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, in.QuizID)
	if err != nil {
		return domain.Result{}, err
	}
	return s.record(ctx, quiz, strings.TrimSpace(in.UserName), in.Answers, in.TimeElapsed)
}

func (s *QuizService) record(ctx context.Context, quiz domain.Quiz, userName string, answers []int, elapsed int) (domain.Result, error) {
	if err := domain.ValidateAnswers(quiz, answers); err != nil {
		return domain.Result{}, err
	}

	result := domain.Result{
		ID:             s.newID(),
		QuizID:         quiz.ID,
		UserName:       userName,
		Answers:        append([]int(nil), answers...),
		Score:          Score(quiz, answers),
		TotalQuestions: len(quiz.Questions),
		TimeElapsed:    elapsed,
		SubmittedAt:    s.now().UTC(),
	}
	if err := s.results.CreateResult(ctx, result); err != nil {
		return domain.Result{}, fmt.Errorf("create result: %w", err)
	}
	s.logger.Info("result submitted",
		zap.String("quiz_id", quiz.ID),
		zap.String("result_id", result.ID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
	)

	s.publish(ctx, quiz)
	return result, nil
}

func (s *QuizService) publish(ctx context.Context, quiz domain.Quiz) {
	if !s.feed.hasSubscribers(quiz.ID) {
		return
	}
	results, err := s.results.ListResults(ctx, quiz.ID)
	if err != nil {
		s.logger.Warn("leaderboard refresh failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
		return
	}
	s.feed.publish(BuildLeaderboard(quiz, results, s.now()))
}

// Leaderboard returns the ranked results and statistics of a quiz.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	results, err := s.results.ListResults(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("list results: %w", err)
	}
	return BuildLeaderboard(quiz, results, s.now()), nil
}

// Subscribe returns a channel that receives leaderboard updates for a quiz,
// starting with the current snapshot. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	// Register before reading so a result stored meanwhile is published to us.
	ch, cancel := s.feed.subscribe(quizID)
	lb, err := s.Leaderboard(ctx, quizID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	s.feed.prime(quizID, ch, lb)
	return ch, cancel, nil
}

// StartAttempt begins a server-timed attempt for userName.
func (s *QuizService) StartAttempt(ctx context.Context, quizID, userName string) (domain.Attempt, error) {
	if err := domain.ValidateUserName(userName); err != nil {
		return domain.Attempt{}, err
	}
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Attempt{}, err
	}

	ticks, release := s.ticker()
	attempt := NewAttempt(s.newID(), quizID, strings.TrimSpace(userName), s.now().UTC(), ticks, release)
	s.attempts.Add(attempt)
	if s.attemptTTL > 0 {
		attempt.expireAfter(s.attemptTTL, func() { s.expireAttempt(attempt.ID()) })
	}
	return attempt.Snapshot(), nil
}

func (s *QuizService) expireAttempt(attemptID string) {
	attempt, ok := s.attempts.Remove(attemptID)
	if !ok {
		return
	}
	elapsed := attempt.Stop()
	s.logger.Info("attempt expired",
		zap.String("attempt_id", attemptID),
		zap.String("quiz_id", attempt.QuizID()),
		zap.Int("elapsed", elapsed),
	)
}

// AttemptStatus reports the elapsed time of a running attempt.
func (s *QuizService) AttemptStatus(_ context.Context, attemptID string) (domain.Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt.Snapshot(), nil
}

// SubmitAttempt validates the answers, stops the timer and records the
// result with the server-counted elapsed time. Invalid answers leave the
// attempt running so the respondent can fix them.
func (s *QuizService) SubmitAttempt(ctx context.Context, attemptID string, answers []int) (domain.Result, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.Result{}, domain.ErrAttemptNotFound
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID())
	if err != nil {
		return domain.Result{}, err
	}
	if err := domain.ValidateAnswers(quiz, answers); err != nil {
		return domain.Result{}, err
	}

	attempt, ok = s.attempts.Remove(attemptID)
	if !ok {
		return domain.Result{}, domain.ErrAttemptNotFound
	}
	elapsed := attempt.Stop()
	return s.record(ctx, quiz, attempt.userName, answers, elapsed)
}

// AbandonAttempt stops the timer and forgets the attempt.
func (s *QuizService) AbandonAttempt(_ context.Context, attemptID string) error {
	attempt, ok := s.attempts.Remove(attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	attempt.Stop()
	return nil
}

// ShareLink returns the public link for an existing quiz.
func (s *QuizService) ShareLink(ctx context.Context, quizID string) (string, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return "", err
	}
	return share.BuildLink(s.origin, quizID)
}
