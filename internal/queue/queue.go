package queue

import (
	"errors"
	"os"
	"sync"

	"lagospaces/server/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// EventQueue is an in-memory queue of domain event batches
type EventQueue struct {
	items    chan []models.Event
	drained  chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	workers  sync.WaitGroup
	logger   *logrus.Logger
	handlers []func([]models.Event) error
}

// NewEventQueue creates a new event queue with the specified buffer size
func NewEventQueue(bufferSize int, logger *logrus.Logger) *EventQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if bufferSize < 1 {
		bufferSize = 1
	}

	return &EventQueue{
		items:    make(chan []models.Event, bufferSize),
		drained:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]models.Event) error, 0),
	}
}

// Push adds a batch of events to the queue without blocking
func (q *EventQueue) Push(events []models.Event) error {
	// The read lock is held across the send so Close cannot close the channel underneath it
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- events:
		q.logger.WithField("batch_size", len(events)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *EventQueue) Subscribe(handler func([]models.Event) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue with the given number of workers.
// Calling it more than once, or after Close, has no effect.
func (q *EventQueue) Start(workers int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	if workers < 1 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		q.workers.Add(1)
		go q.process()
	}
	go func() {
		q.workers.Wait()
		close(q.drained)
	}()
}

// process consumes batches until the queue is closed and empty
func (q *EventQueue) process() {
	defer q.workers.Done()
	for batch := range q.items {
		q.processBatch(batch)
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *EventQueue) processBatch(batch []models.Event) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("batch_size", len(batch)).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting new batches. Batches already queued are still delivered.
func (q *EventQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.items)
	if !q.started {
		close(q.drained)
	}
	return nil
}

// Drained is closed once the queue is closed and every queued batch has been handled
func (q *EventQueue) Drained() <-chan struct{} {
	return q.drained
}

// Len returns the current number of batches in the queue
func (q *EventQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *EventQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
