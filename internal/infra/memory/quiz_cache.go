package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizshare/internal/app"
	"quizshare/internal/domain"
)

// QuizCache caches quizzes from a backing repository with a TTL to avoid
// repeated store hits. Quizzes are never edited in place, so a cached copy
// can only go stale by expiring.
type QuizCache struct {
	next  app.QuizRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(next app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedQuiz),
	}
}

// CreateQuiz writes through and primes the cache.
func (c *QuizCache) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := c.next.CreateQuiz(ctx, quiz); err != nil {
		return err
	}
	c.store(quiz, c.clock())
	return nil
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(quizID, c.clock()); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		if quiz, ok := c.lookup(quizID, now); ok {
			return quiz, nil
		}

		quiz, err := c.next.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(quiz, now)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(result.(domain.Quiz)), nil
}

// ListQuizzes always reads the backing store; new quizzes from other
// instances must show up.
func (c *QuizCache) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return c.next.ListQuizzes(ctx)
}

func (c *QuizCache) lookup(quizID string, now time.Time) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Quiz{}, false
	}
	return cloneQuiz(entry.quiz), true
}

func (c *QuizCache) store(quiz domain.Quiz, now time.Time) {
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.cache[quiz.ID] = cachedQuiz{quiz: cloneQuiz(quiz), expiresAt: now.Add(ttl)}
	c.mu.Unlock()
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
