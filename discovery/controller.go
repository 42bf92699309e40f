package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// State describes the state of the discovery session controller.
type State int

// The different controller states.
const (
	StateIdle State = iota
	StateScanning
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	}

	return "idle"
}

// Controller owns the discovery lifecycle: it starts and cancels the radio's
// discovery, and keeps the event adapter subscribed while scanning.
type Controller struct {
	gate    *Gate
	radio   Radio
	adapter *EventAdapter
	log     zerolog.Logger

	// beforeStart is called once discovery has started, before any
	// event is delivered.
	beforeStart func()

	// current is written with mu held, and read without it.
	current atomic.Pointer[Subscription]
	mu      sync.Mutex
}

// NewController returns a new controller. A nil radio makes every
// [Controller.Start] call return [ErrRadioUnavailable].
func NewController(gate *Gate, radio Radio, adapter *EventAdapter, log zerolog.Logger) *Controller {
	return &Controller{
		gate:    gate,
		radio:   radio,
		adapter: adapter,
		log:     log,
	}
}

// Start starts a discovery session and returns its subscription.
// If a session is already active, it is returned instead and nothing
// else happens.
func (c *Controller) Start() (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.radio == nil {
		return nil, ErrRadioUnavailable
	}

	if s := c.current.Load(); s != nil {
		if !s.ended() {
			return s, nil
		}

		c.current.Store(nil)
	}

	if !c.gate.Authorized() {
		c.log.Debug().Stringer("missing", CapabilityList(c.gate.Missing())).Msg("Discovery is not authorized")
		return nil, ErrNotAuthorized
	}

	scanning, err := c.radio.IsScanning()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanStart, err)
	}
	if scanning {
		if err := c.radio.CancelScan(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanCancel, err)
		}

		c.log.Debug().Msg("Canceled an already running discovery")
	}

	notifications, err := c.radio.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubscribe, err)
	}
	if notifications == nil {
		return nil, ErrSubscribe
	}

	if err := c.radio.StartScan(); err != nil {
		notifications.unsubscribe()
		return nil, fmt.Errorf("%w: %w", ErrScanStart, err)
	}

	if c.beforeStart != nil {
		c.beforeStart()
	}

	s := newSubscription(c, notifications)
	c.current.Store(s)

	go s.run(c.adapter.Deliver)

	s.log.Info().Msg("Discovery started")

	return s, nil
}

// Stop stops the current discovery session. Once it returns, no more
// found-device events are delivered. It does nothing if no session is active.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current.Swap(nil)
	if s == nil {
		return nil
	}

	return c.teardown(s)
}

// State returns the current state of the controller.
// It never blocks, so registry observers may call it.
func (c *Controller) State() State {
	s := c.current.Load()
	if s == nil || s.ended() {
		return StateIdle
	}

	return StateScanning
}

// closeSubscription stops the session only if the subscription
// is still the current one.
func (c *Controller) closeSubscription(s *Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current.CompareAndSwap(s, nil) {
		<-s.done
		return nil
	}

	return c.teardown(s)
}

// teardown ends the session before canceling the radio's discovery, so that
// the radio reporting the cancellation is not taken as a completion.
// The radio is left alone if discovery already completed on its own.
func (c *Controller) teardown(s *Subscription) error {
	var err error

	ended := s.ended()
	s.cancel()

	if !ended {
		if cerr := c.radio.CancelScan(); cerr != nil {
			err = fmt.Errorf("%w: %w", ErrScanCancel, cerr)
		}
	}

	<-s.done

	if err != nil {
		s.log.Warn().Err(err).Msg("Discovery stopped with an error")
		return err
	}

	s.log.Info().Bool("completed", s.completed.Load()).Msg("Discovery stopped")

	return nil
}

// Subscription is a handle to an active discovery session.
// Closing it is the only way to unsubscribe from the session's events.
type Subscription struct {
	id string
	c  *Controller

	notifications *Notifications

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	completed atomic.Bool

	log zerolog.Logger
}

// newSubscription returns a new subscription for the controller.
func newSubscription(c *Controller, notifications *Notifications) *Subscription {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	return &Subscription{
		id:            id,
		c:             c,
		notifications: notifications,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		log:           c.log.With().Str("session", id).Logger(),
	}
}

// ID returns the unique ID of the session.
func (s *Subscription) ID() string {
	return s.id
}

// Done returns a channel which is closed when the session ends,
// either by being stopped or by the radio completing discovery.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Completed returns whether the radio completed discovery on its own.
func (s *Subscription) Completed() bool {
	return s.completed.Load()
}

// Close stops the session if it is still active.
func (s *Subscription) Close() error {
	return s.c.closeSubscription(s)
}

// run delivers found-device events until the session is canceled
// or discovery completes.
func (s *Subscription) run(deliver func(FoundEvent) bool) {
	defer close(s.done)
	defer s.notifications.unsubscribe()

	for {
		select {
		case <-s.ctx.Done():
			return

		case ev, ok := <-s.notifications.Found:
			if !ok {
				s.complete()
				return
			}

			// Stop may have been called while this event was pending.
			if s.ctx.Err() != nil {
				return
			}

			if deliver(ev) {
				s.log.Debug().Str("address", ev.Address.String()).Msg("Device discovered")
			}

		case <-s.notifications.Completed:
			s.complete()
			return
		}
	}
}

// complete marks the session as completed by the radio.
func (s *Subscription) complete() {
	if s.ctx.Err() != nil {
		return
	}

	s.completed.Store(true)
	s.log.Info().Msg("Discovery completed")
}

// ended returns whether the session's delivery loop has exited.
func (s *Subscription) ended() bool {
	select {
	case <-s.done:
		return true

	default:
	}

	return false
}

// unsubscribe releases the notification subscription, if any.
func (n *Notifications) unsubscribe() {
	if n != nil && n.Unsubscribe != nil {
		n.Unsubscribe()
	}
}
