package broadcast_test

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/notifyhub/announcements/internal/domain"
)

// fakeSender records calls and fails them in order from failures.
type fakeSender struct {
	mu       sync.Mutex
	calls    []string
	failures []error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	hold        chan struct{}
	panicOn     string
}

func (s *fakeSender) Send(ctx context.Context, to, message string) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		cur := s.maxInFlight.Load()
		if n <= cur || s.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, to)
	var err error
	if len(s.failures) > 0 {
		err, s.failures = s.failures[0], s.failures[1:]
	}
	s.mu.Unlock()

	if s.panicOn != "" && to == s.panicOn {
		panic("provider exploded")
	}
	if s.hold != nil {
		<-s.hold
	}
	if err != nil {
		return "", err
	}
	return "msg-" + to, nil
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// countingSource yields members and records how far it was pulled.
type countingSource struct {
	members []domain.Recipient
	failAt  int
	opened  atomic.Int32
	pulled  atomic.Int32
}

func (s *countingSource) Recipients(_ context.Context, _ domain.Audience) iter.Seq2[domain.Recipient, error] {
	s.opened.Add(1)
	return func(yield func(domain.Recipient, error) bool) {
		for i, m := range s.members {
			if s.failAt > 0 && i == s.failAt {
				yield(domain.Recipient{}, errors.New("directory unavailable"))
				return
			}
			s.pulled.Add(1)
			if !yield(m, nil) {
				return
			}
		}
	}
}

type countableSource struct {
	countingSource
	size int
}

func (s *countableSource) Count(context.Context, domain.Audience) (int, error) {
	return s.size, nil
}

func emailMembers(n int) []domain.Recipient {
	out := make([]domain.Recipient, n)
	for i := range out {
		out[i] = domain.Recipient{Email: fmt.Sprintf("user%d@example.com", i)}
	}
	return out
}
