package security

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink consumes security events (file, database, etc.).
type Sink interface {
	Name() string
	Write(ctx context.Context, ev Event) error
	Close() error
}

// Emitter buffers events on a bounded queue and delivers them to every sink
// from a small worker pool, so a slow sink never stalls request handling.
type Emitter struct {
	queue    chan Event
	sinks    []Sink
	workers  int
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewEmitter(sinks []Sink, queueSize, workers int, logger *zap.Logger) *Emitter {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 2
	}
	return &Emitter{
		queue:    make(chan Event, queueSize),
		sinks:    sinks,
		workers:  workers,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (e *Emitter) Start() {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.deliver(i + 1)
	}
}

// Stop drains in-flight deliveries and closes the sinks.
func (e *Emitter) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		e.wg.Wait()
		for _, s := range e.sinks {
			if err := s.Close(); err != nil {
				e.logger.Warn("security sink close failed",
					zap.String("sink", s.Name()), zap.Error(err))
			}
		}
	})
}

// Emit enqueues an event without blocking. Events are dropped when the
// queue is full or the emitter is stopping; auditing must never back-pressure
// the request path.
func (e *Emitter) Emit(ev Event) {
	select {
	case <-e.stopChan:
	case e.queue <- ev:
	default:
		e.logger.Warn("security event queue full, dropping event",
			zap.String("event_type", string(ev.Type)))
	}
}

func (e *Emitter) deliver(workerID int) {
	defer e.wg.Done()
	e.logger.Debug("security delivery worker started", zap.Int("worker", workerID))

	for {
		select {
		case <-e.stopChan:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case ev := <-e.queue:
					e.writeAll(ev)
				default:
					return
				}
			}
		case ev := <-e.queue:
			e.writeAll(ev)
		}
	}
}

func (e *Emitter) writeAll(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, s := range e.sinks {
		if err := s.Write(ctx, ev); err != nil {
			e.logger.Warn("security event delivery failed",
				zap.String("sink", s.Name()), zap.Error(err))
		}
	}
}
