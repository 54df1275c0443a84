package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-valentine/internal/config"
)

// ErrTickerRunning is returned when Start is called on an active ticker.
var ErrTickerRunning = errors.New(config.ErrTickerRunning)

// TickFunc receives the clock reading of each tick. Returning an error stops the ticker.
type TickFunc func(now time.Time) error

// Ticker is a cancellable repeating task owned by whichever view starts it.
//
// The first tick fires immediately on Start. Ticks never overlap: the next one is
// only consumed after the previous TickFunc returned. Stop tears the goroutine
// down and waits for it, so no tick runs after Stop returns.
type Ticker struct {
	clock    Clock
	interval time.Duration
	fn       TickFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewTicker builds a stopped ticker. A non-positive interval falls back to one second.
func NewTicker(clock Clock, interval time.Duration, fn TickFunc) *Ticker {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}
	return &Ticker{clock: clock, interval: interval, fn: fn}
}

// Start launches the tick loop. It stops on its own when ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		select {
		case <-t.done:
			// Previous run finished; allow a restart.
		default:
			return ErrTickerRunning
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.err = nil

	go t.loop(runCtx, t.done)
	return nil
}

// Stop cancels the loop and blocks until it has exited. Safe to call repeatedly.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the current run ends. Nil before the first Start.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Err returns the error that ended the last run, if the TickFunc produced one.
func (t *Ticker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	log := slog.With(config.LogKeyComponent, config.CompTicker)

	if err := t.tick(); err != nil {
		log.Debug(config.MsgTickerStopped, config.LogKeyError, err)
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick may race with cancellation; cancellation wins.
			if ctx.Err() != nil {
				return
			}
			if err := t.tick(); err != nil {
				log.Debug(config.MsgTickerStopped, config.LogKeyError, err)
				return
			}
		}
	}
}

func (t *Ticker) tick() error {
	if t.fn == nil {
		return nil
	}
	if err := t.fn(t.clock.Now()); err != nil {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		return err
	}
	return nil
}
