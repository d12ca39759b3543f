package timer

import (
	"log/slog"
	"sync"
	"time"
)

// TickSource delivers the one-second pulses that drive a running countdown.
// The real implementation wraps time.Ticker; tests inject a manual one.
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory produces a fresh TickSource each time a countdown starts.
type TickerFactory func() TickSource

// SecondTicker returns a wall-clock TickSource firing once per second.
func SecondTicker() TickSource {
	return &realTicker{t: time.NewTicker(time.Second)}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// ManualTicker is a TickSource driven by explicit Tick calls, for tests and
// deterministic drivers.
type ManualTicker struct{ ch chan time.Time }

// NewManualTicker creates a ManualTicker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time, 1)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }
func (m *ManualTicker) Stop()               {}

// Tick delivers one pulse.
func (m *ManualTicker) Tick() { m.ch <- time.Now() }

// Controller owns one session's zone/timer state. It holds the machine
// state, interprets transition effects, and guarantees that at most one tick
// source is alive at a time. All state is private to the instance, so
// independent sessions can each run their own Controller.
type Controller struct {
	mu      sync.Mutex
	state   State
	ticks   TickerFactory
	logger  *slog.Logger
	current TickSource
	quit    chan struct{}
	gen     int
	pending []string
	notify  func(string)
	closed  bool
}

// NewController creates a Controller. factory may be nil for SecondTicker;
// notify, if non-nil, receives every user-facing message as it is emitted.
func NewController(factory TickerFactory, notify func(string), logger *slog.Logger) *Controller {
	if factory == nil {
		factory = SecondTicker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{ticks: factory, notify: notify, logger: logger}
}

// State returns a snapshot of the machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Notifications drains and returns the pending user-facing messages.
func (c *Controller) Notifications() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}

// SelectZone records the user's initial zone choice.
func (c *Controller) SelectZone(zone string) error {
	return c.dispatch(SelectZone{Zone: zone})
}

// SetDuration validates and starts the countdown.
func (c *Controller) SetDuration(minutes, seconds int) error {
	return c.dispatch(SetDuration{Minutes: minutes, Seconds: seconds})
}

// Switch flips to the complementary zone without waiting for expiry,
// cancelling any in-flight countdown.
func (c *Controller) Switch() error {
	return c.dispatch(ManualSwitch{})
}

// Close tears the controller down, cancelling any pending tick source.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTicker()
	c.closed = true
}

func (c *Controller) dispatch(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	next, effects, err := Transition(c.state, ev)
	if err != nil {
		return err
	}
	c.state = next
	c.apply(effects)
	return nil
}

// apply interprets effects. Caller holds the lock.
func (c *Controller) apply(effects []Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case StopTicker:
			c.stopTicker()
		case StartTicker:
			c.startTicker()
		case Notify:
			c.logger.Debug("timer notification", "message", eff.Message)
			c.pending = append(c.pending, eff.Message)
			if c.notify != nil {
				c.notify(eff.Message)
			}
		}
	}
}

func (c *Controller) startTicker() {
	c.stopTicker()
	c.gen++
	gen := c.gen
	src := c.ticks()
	quit := make(chan struct{})
	c.current = src
	c.quit = quit

	go func() {
		for {
			select {
			case <-quit:
				return
			case <-src.C():
				c.handleTick(gen)
			}
		}
	}()
}

// stopTicker invalidates the generation so a tick already in flight when the
// zone switches is discarded instead of decrementing the new countdown.
func (c *Controller) stopTicker() {
	if c.current == nil {
		return
	}
	c.current.Stop()
	close(c.quit)
	c.current = nil
	c.quit = nil
	c.gen++
}

func (c *Controller) handleTick(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	next, effects, err := Transition(c.state, Tick{})
	if err != nil {
		return
	}
	c.state = next
	c.apply(effects)

	if c.state.Phase == PhaseExpired {
		next, effects, err := Transition(c.state, Advance{})
		if err == nil {
			c.state = next
			c.apply(effects)
		}
	}
}
