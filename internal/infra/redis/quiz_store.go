package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizshare/internal/domain"
)

// quizzesKey is a hash of quiz id -> quiz JSON.
const quizzesKey = "quizzes"

// QuizStore keeps quiz definitions in a single Redis hash. Each create is
// one HSETNX, so a quiz is either fully written or not at all.
type QuizStore struct {
	client *redis.Client
}

func NewQuizStore(client *redis.Client) *QuizStore {
	return &QuizStore{client: client}
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	created, err := s.client.HSetNX(ctx, quizzesKey, quiz.ID, data).Result()
	if err != nil {
		return fmt.Errorf("store quiz: %w", err)
	}
	if !created {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	raw, err := s.client.HGet(ctx, quizzesKey, quizID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return decodeQuiz(raw)
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	all, err := s.client.HGetAll(ctx, quizzesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(all))
	for _, raw := range all {
		quiz, err := decodeQuiz([]byte(raw))
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func decodeQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
