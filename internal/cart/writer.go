package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const saveTimeout = 5 * time.Second

// writeBehind persists snapshots on one goroutine. Only the newest pending
// snapshot is written; older ones are superseded.
type writeBehind struct {
	repo repository.CartRepository
	log  logrus.FieldLogger

	mu      sync.Mutex
	pending *domain.CartState
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newWriteBehind(repo repository.CartRepository, log logrus.FieldLogger) *writeBehind {
	w := &writeBehind{
		repo: repo,
		log:  log,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writeBehind) submit(s domain.CartState) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &s
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writeBehind) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

func (w *writeBehind) flush() {
	w.mu.Lock()
	s := w.pending
	w.pending = nil
	w.mu.Unlock()
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := w.repo.Save(ctx, *s); err != nil {
		// in-memory state stays as is
		w.log.WithError(err).Error("cart: persist failed")
	}
}

// close writes the last pending snapshot and stops the goroutine.
func (w *writeBehind) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.stop)
	<-w.done
}
