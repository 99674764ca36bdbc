package app

import (
	"sync"
	"sync/atomic"
	"time"

	"quizshare/internal/domain"
)

// DefaultAttemptTTL is how long an attempt stays open when nothing else is
// configured.
const DefaultAttemptTTL = 2 * time.Hour

// TickerFunc starts a periodic tick source and returns it along with a func
// that releases it.
type TickerFunc func() (<-chan time.Time, func())

// SecondTicker ticks once per second.
func SecondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// Attempt is an in-progress quiz attempt. A goroutine increments its elapsed
// counter on every tick until Stop is called.
type Attempt struct {
	id        string
	quizID    string
	userName  string
	startedAt time.Time

	elapsed atomic.Int64
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	expiry *time.Timer
}

// NewAttempt starts counting on ticks immediately. release is called once the
// counter goroutine exits.
func NewAttempt(id, quizID, userName string, startedAt time.Time, ticks <-chan time.Time, release func()) *Attempt {
	a := &Attempt{
		id:        id,
		quizID:    quizID,
		userName:  userName,
		startedAt: startedAt,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go a.run(ticks, release)
	return a
}

func (a *Attempt) run(ticks <-chan time.Time, release func()) {
	defer close(a.done)
	if release != nil {
		defer release()
	}
	for {
		select {
		case <-a.stop:
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			a.elapsed.Add(1)
		}
	}
}

// ID returns the attempt identifier.
func (a *Attempt) ID() string { return a.id }

// QuizID returns the quiz being attempted.
func (a *Attempt) QuizID() string { return a.quizID }

// Elapsed returns the whole seconds counted so far.
func (a *Attempt) Elapsed() int {
	return int(a.elapsed.Load())
}

// Stop cancels the timer and returns the final elapsed seconds. Safe to call
// more than once.
func (a *Attempt) Stop() int {
	a.once.Do(func() {
		close(a.stop)
		a.mu.Lock()
		if a.expiry != nil {
			a.expiry.Stop()
		}
		a.mu.Unlock()
	})
	<-a.done
	return a.Elapsed()
}

// expireAfter runs fn once d has passed unless the attempt is stopped first.
func (a *Attempt) expireAfter(d time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.stop:
		return
	default:
	}
	a.expiry = time.AfterFunc(d, fn)
}

// Snapshot returns the attempt as a domain value.
func (a *Attempt) Snapshot() domain.Attempt {
	return domain.Attempt{
		ID:        a.id,
		QuizID:    a.quizID,
		UserName:  a.userName,
		StartedAt: a.startedAt,
		Elapsed:   a.Elapsed(),
	}
}
