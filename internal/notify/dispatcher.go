package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const sendTimeout = 10 * time.Second

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
)

// Dispatcher queues notifications and delivers them on its own goroutine.
// Notify never blocks: when the queue is full the notification is dropped.
type Dispatcher struct {
	logger  *slog.Logger
	sink    Notifier
	results *prometheus.CounterVec

	mu     sync.RWMutex
	closed bool
	queue  chan Notification
	wg     sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, sink Notifier, queueSize int, results *prometheus.CounterVec) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}

	return &Dispatcher{
		logger:  logger.With("component", "notify"),
		sink:    sink,
		results: results,
		queue:   make(chan Notification, queueSize),
	}
}

// Start - runs the delivery loop until Close.
func (that *Dispatcher) Start() {
	that.wg.Add(1)

	go func() {
		defer that.wg.Done()

		for notification := range that.queue {
			that.deliver(notification)
		}
	}()
}

func (that *Dispatcher) deliver(notification Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := that.sink.Notify(ctx, notification.Subject, notification.Body); err != nil {
		that.logger.Error("failed to send notification", "subject", notification.Subject, "error", err)
		that.count(resultFailed)
		return
	}

	that.count(resultSent)
}

// Notify - enqueues a notification, never returns an error to the caller.
func (that *Dispatcher) Notify(subject, body string) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.closed {
		return
	}

	select {
	case that.queue <- Notification{Subject: subject, Body: body, SentAt: time.Now()}:
	default:
		that.logger.Warn("notification queue is full, dropping", "subject", subject)
		that.count(resultDropped)
	}
}

// Close - stops accepting notifications and waits until the queue is drained.
func (that *Dispatcher) Close() {
	that.mu.Lock()
	if !that.closed {
		that.closed = true
		close(that.queue)
	}
	that.mu.Unlock()

	that.wg.Wait()
}

func (that *Dispatcher) count(result string) {
	if that.results != nil {
		that.results.WithLabelValues(result).Inc()
	}
}
