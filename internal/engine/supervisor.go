package engine

import (
	"context"
	"sync"

	"github.com/tonhe/spyglass/internal/fleet"
)

// PollFunc runs one poll cycle against a host.
type PollFunc func(ctx context.Context, host *fleet.HostRecord)

// worker is one polling task. done is closed when its cycle finishes.
type worker struct {
	done chan struct{}
}

func (w *worker) finished() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Supervisor maintains at most one live polling worker per host key. A
// worker runs a single poll cycle to completion; the next Tick replaces it
// once it has finished. Liveness gating, not interval elapse, prevents
// overlapping polls against a slow host.
type Supervisor struct {
	mu      sync.Mutex
	poll    PollFunc
	workers map[string]*worker
}

// NewSupervisor creates a Supervisor dispatching cycles to poll.
func NewSupervisor(poll PollFunc) *Supervisor {
	return &Supervisor{
		poll:    poll,
		workers: make(map[string]*worker),
	}
}

// Tick starts a worker for every host that has none registered or whose
// registered worker has finished.
func (s *Supervisor) Tick(ctx context.Context, hosts []*fleet.HostRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, host := range hosts {
		if w, ok := s.workers[host.Key]; ok && !w.finished() {
			continue
		}
		w := &worker{done: make(chan struct{})}
		s.workers[host.Key] = w
		go func(h *fleet.HostRecord) {
			defer close(w.done)
			s.poll(ctx, h)
		}(host)
	}
}

// LiveCount returns the number of workers still in flight.
func (s *Supervisor) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.workers {
		if !w.finished() {
			n++
		}
	}
	return n
}

// Shutdown waits for every registered worker to finish its in-flight poll.
// Join latency is bounded by the RPC timeout.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	workers := make([]*worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	for _, w := range workers {
		<-w.done
	}
}
