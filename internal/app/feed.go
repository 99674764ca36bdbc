package app

import (
	"sync"

	"quizshare/internal/domain"
)

// feed fans leaderboard snapshots out to per-quiz subscribers. Results are
// append-only, so a snapshot with fewer entries than the last one a
// subscriber got is stale and is skipped.
type feed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]*subscriber
}

type subscriber struct {
	ch        chan domain.Leaderboard
	delivered int // entries in the last delivered snapshot, -1 before the first
}

func newFeed() *feed {
	return &feed{subscribers: make(map[string]map[chan domain.Leaderboard]*subscriber)}
}

// subscribe registers a channel for quizID. Nothing is delivered until the
// first prime or publish.
func (f *feed) subscribe(quizID string) (chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]*subscriber)
		f.subscribers[quizID] = subs
	}
	subs[ch] = &subscriber{ch: ch, delivered: -1}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[quizID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// prime hands a single subscriber its initial snapshot.
func (f *feed) prime(quizID string, ch chan domain.Leaderboard, lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subscribers[quizID][ch]; ok {
		sub.deliver(lb)
	}
}

func (f *feed) hasSubscribers(quizID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID]) > 0
}

func (f *feed) publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subscribers[lb.QuizID] {
		sub.deliver(lb)
	}
}

// deliver must be called with the feed lock held.
func (s *subscriber) deliver(lb domain.Leaderboard) {
	if len(lb.Entries) < s.delivered {
		return
	}
	s.delivered = len(lb.Entries)
	select {
	case s.ch <- lb:
	default:
		// Slow subscriber: drop its oldest snapshot so the newest one always lands.
		select {
		case <-s.ch:
		default:
		}
		s.ch <- lb
	}
}
