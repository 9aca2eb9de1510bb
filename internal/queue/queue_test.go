package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"lagospaces/server/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string) models.Event {
	return models.Event{ID: id, Type: models.EventBookingCompleted, UserID: "user1"}
}

func TestNewEventQueue(t *testing.T) {
	logger := logrus.New()
	q := NewEventQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())

	q = NewEventQueue(0, nil)
	assert.Equal(t, 1, q.maxSize)
	assert.NotNil(t, q.logger)
}

func TestEventQueue_Push(t *testing.T) {
	q := NewEventQueue(2, logrus.New())

	err := q.Push([]models.Event{event("e1")})
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	require.NoError(t, q.Push([]models.Event{event("e2")}))
	err = q.Push([]models.Event{event("e3")})
	assert.Equal(t, ErrQueueFull, err)
	assert.Equal(t, 2, q.Len())

	require.NoError(t, q.Close())
	err = q.Push([]models.Event{event("e4")})
	assert.Equal(t, ErrQueueClosed, err)
}

func TestEventQueue_Subscribe(t *testing.T) {
	q := NewEventQueue(10, logrus.New())

	var processed []models.Event
	var mu sync.Mutex

	q.Subscribe(func(events []models.Event) error {
		mu.Lock()
		processed = append(processed, events...)
		mu.Unlock()
		return nil
	})

	q.Start(1)

	err := q.Push([]models.Event{event("e1"), event("e2")})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "e1", processed[0].ID)
	assert.Equal(t, "e2", processed[1].ID)
	mu.Unlock()
}

func TestEventQueue_Close(t *testing.T) {
	q := NewEventQueue(10, logrus.New())

	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Second close is a no-op
	err = q.Close()
	assert.NoError(t, err)

	select {
	case <-q.Drained():
	default:
		t.Fatal("queue that never started should report drained on close")
	}

	// Starting a closed queue does nothing
	q.Start(2)
}

func TestEventQueue_CloseDeliversQueuedBatches(t *testing.T) {
	q := NewEventQueue(10, logrus.New())

	var count int
	var mu sync.Mutex
	q.Subscribe(func(events []models.Event) error {
		mu.Lock()
		count += len(events)
		mu.Unlock()
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push([]models.Event{event("e")}))
	}
	q.Start(2)
	require.NoError(t, q.Close())

	select {
	case <-q.Drained():
	case <-time.After(time.Second):
		t.Fatal("queue did not drain")
	}

	mu.Lock()
	assert.Equal(t, 5, count)
	mu.Unlock()
}

func TestEventQueue_ProcessBatch(t *testing.T) {
	q := NewEventQueue(10, logrus.New())

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(events []models.Event) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}

	q.Start(1)

	err := q.Push([]models.Event{event("e1")})
	assert.NoError(t, err)

	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}

func TestEventQueue_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	q := NewEventQueue(10, logrus.New())

	var mu sync.Mutex
	var seen []string
	q.Subscribe(func(events []models.Event) error {
		return errors.New("boom")
	})
	q.Subscribe(func(events []models.Event) error {
		mu.Lock()
		seen = append(seen, events[0].ID)
		mu.Unlock()
		return nil
	})

	q.Start(1)
	require.NoError(t, q.Push([]models.Event{event("e1")}))
	require.NoError(t, q.Push([]models.Event{event("e2")}))
	require.NoError(t, q.Close())
	<-q.Drained()

	mu.Lock()
	assert.Equal(t, []string{"e1", "e2"}, seen)
	mu.Unlock()
}
