package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizshare/internal/app"
	"quizshare/internal/domain"
)

// QuizCache caches quiz JSON in Redis (one key per quiz) and falls back to
// the backing repository on a miss:
// SET quiz:cache:{quizID} {quizJSON} EX ttl
// Cache write failures are ignored; the backing store stays the source of truth.
type QuizCache struct {
	client *redis.Client
	next   app.QuizRepository
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizCache(client *redis.Client, next app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := c.next.CreateQuiz(ctx, quiz); err != nil {
		return err
	}
	c.store(ctx, quiz)
	return nil
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.lookup(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := c.next.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	// singleflight hands the same value to every waiter
	return cloneQuiz(result.(domain.Quiz)), nil
}

func (c *QuizCache) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return c.next.ListQuizzes(ctx)
}

func (c *QuizCache) lookup(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) store(ctx context.Context, quiz domain.Quiz) {
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(quiz.ID), data, ttl).Err()
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:cache:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
