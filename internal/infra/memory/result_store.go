package memory

import (
	"context"
	"sync"

	"quizshare/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultRepository.
type ResultStore struct {
	mu     sync.RWMutex
	ids    map[string]struct{}
	byQuiz map[string][]domain.Result
	all    []domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		ids:    make(map[string]struct{}),
		byQuiz: make(map[string][]domain.Result),
	}
}

func (s *ResultStore) CreateResult(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[result.ID]; ok {
		return domain.ErrAlreadyExists
	}
	result.Answers = append([]int(nil), result.Answers...)
	s.ids[result.ID] = struct{}{}
	s.byQuiz[result.QuizID] = append(s.byQuiz[result.QuizID], result)
	s.all = append(s.all, result)
	return nil
}

func (s *ResultStore) ListResults(_ context.Context, quizID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResults(s.byQuiz[quizID]), nil
}

func (s *ResultStore) ListAllResults(_ context.Context) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResults(s.all), nil
}

func cloneResults(results []domain.Result) []domain.Result {
	out := make([]domain.Result, len(results))
	for i, r := range results {
		r.Answers = append([]int(nil), r.Answers...)
		out[i] = r
	}
	return out
}
