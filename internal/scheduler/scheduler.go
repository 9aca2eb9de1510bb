package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper drops idle wizard sessions
type Sweeper interface {
	Sweep(now time.Time) int
}

// BookingExpirer forfeits bookings whose refund window has passed
type BookingExpirer interface {
	ExpireOverdueBookings(cutoff time.Time) (int64, error)
}

// TokenPruner forgets revoked tokens that have expired anyway
type TokenPruner interface {
	PruneRevoked(now time.Time) int
}

// Scheduler runs the periodic housekeeping jobs
type Scheduler struct {
	sessions     Sweeper
	bookings     BookingExpirer
	tokens       TokenPruner
	refundWindow time.Duration
	interval     time.Duration
	now          func() time.Time
	logger       *logrus.Logger
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	jobMutex     sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler. Any of sessions, bookings and tokens may be nil.
func NewScheduler(sessions Sweeper, bookings BookingExpirer, tokens TokenPruner, refundWindow time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		sessions:     sessions,
		bookings:     bookings,
		tokens:       tokens,
		refundWindow: refundWindow,
		interval:     time.Minute,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Bookings that lapsed while the server was down are settled right away
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce executes every job a single time
func (s *Scheduler) RunOnce() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	now := s.now()

	if s.sessions != nil {
		if n := s.sessions.Sweep(now); n > 0 {
			s.logger.WithField("sessions", n).Info("Dropped idle wizard sessions")
		}
	}

	if s.bookings != nil && s.refundWindow > 0 {
		cutoff := now.Add(-s.refundWindow)
		n, err := s.bookings.ExpireOverdueBookings(cutoff)
		if err != nil {
			s.logger.WithError(err).WithField("cutoff", cutoff).Error("Failed to expire overdue bookings")
		} else if n > 0 {
			s.logger.WithFields(logrus.Fields{
				"bookings": n,
				"cutoff":   cutoff,
			}).Info("Forfeited bookings past the refund window")
		}
	}

	if s.tokens != nil {
		if n := s.tokens.PruneRevoked(now); n > 0 {
			s.logger.WithField("tokens", n).Debug("Pruned expired revoked tokens")
		}
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
