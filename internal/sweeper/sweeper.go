// Package sweeper completes confirmed reservations whose checkout day has passed.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultSchedule = "@every 1h"

type Completer interface {
	Today() booking.Date
	ExpiredActive(ctx context.Context, asOf booking.Date) ([]booking.Reservation, error)
	Complete(ctx context.Context, id string, asOf booking.Date) (booking.Reservation, error)
}

type Result struct {
	AsOf      booking.Date `json:"as_of"`
	Scanned   int          `json:"scanned"`
	Completed int          `json:"completed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
}

type Sweeper struct {
	Bookings Completer
	Workers  int

	mu   sync.Mutex
	cron *cron.Cron
}

func New(bookings Completer, workers int) *Sweeper {
	return &Sweeper{Bookings: bookings, Workers: workers}
}

// RunOnce completes every CONFIRMED reservation with checkout before today.
// A failing item is logged and skipped; only the initial listing aborts the run.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	asOf := s.Bookings.Today()
	res := Result{AsOf: asOf}

	due, err := s.Bookings.ExpiredActive(ctx, asOf)
	if err != nil {
		return res, fmt.Errorf("list expired reservations: %w", err)
	}
	res.Scanned = len(due)

	var completed, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for _, r := range due {
		g.Go(func() error {
			_, err := s.Bookings.Complete(gctx, r.ID, asOf)
			switch {
			case err == nil:
				completed.Add(1)
			case errors.Is(err, booking.ErrAlreadyTerminal):
				// cancelled or completed by someone else since the listing
				skipped.Add(1)
			default:
				failed.Add(1)
				logx.Logger.WithError(err).WithField("reservation_id", r.ID).Error("sweep: complete failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Completed = int(completed.Load())
	res.Skipped = int(skipped.Load())
	res.Failed = int(failed.Load())
	logx.Logger.WithFields(logrus.Fields{
		"as_of": asOf.String(), "scanned": res.Scanned, "completed": res.Completed,
		"skipped": res.Skipped, "failed": res.Failed,
	}).Info("sweep finished")
	return res, nil
}

func (s *Sweeper) workers() int {
	if s.Workers <= 0 {
		return 4
	}
	return s.Workers
}

// Start schedules RunOnce. Overlapping ticks are skipped, never queued.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("sweeper already started")
	}
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			logx.Logger.WithError(err).Error("sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// cronLogger routes cron's own messages into logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logx.Logger.WithField("kv", keysAndValues).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logx.Logger.WithError(err).WithField("kv", keysAndValues).Error("cron: " + msg)
}
