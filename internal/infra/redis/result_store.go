package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizshare/internal/domain"
)

const (
	resultIDsKey     = "quiz:results:ids"
	resultQuizzesKey = "quiz:results:quizzes"
)

// appendResult claims the result id, appends the JSON to the quiz's list and
// indexes the quiz, all in one script so the record is written atomically.
var appendResult = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('RPUSH', KEYS[2], ARGV[2])
redis.call('SADD', KEYS[3], ARGV[3])
return 1
`)

// ResultStore keeps results as one Redis list per quiz:
// RPUSH quiz:{quizID}:results {resultJSON}
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) CreateResult(ctx context.Context, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	keys := []string{resultIDsKey, resultsKey(result.QuizID), resultQuizzesKey}
	created, err := appendResult.Run(ctx, s.client, keys, result.ID, data, result.QuizID).Int()
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	if created == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.Result, error) {
	raw, err := s.client.LRange(ctx, resultsKey(quizID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return decodeResults(raw)
}

func (s *ResultStore) ListAllResults(ctx context.Context) ([]domain.Result, error) {
	quizIDs, err := s.client.SMembers(ctx, resultQuizzesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list result quizzes: %w", err)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(quizIDs))
	for i, id := range quizIDs {
		cmds[i] = pipe.LRange(ctx, resultsKey(id), 0, -1)
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("list results: %w", err)
		}
	}

	var all []domain.Result
	for _, cmd := range cmds {
		results, err := decodeResults(cmd.Val())
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func resultsKey(quizID string) string {
	return "quiz:" + quizID + ":results"
}

func decodeResults(raw []string) ([]domain.Result, error) {
	results := make([]domain.Result, 0, len(raw))
	for _, item := range raw {
		var r domain.Result
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}
