package discovery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ResetPolicy describes what happens to previously discovered devices
// when a new discovery session starts.
type ResetPolicy string

// The different reset policies.
const (
	// ResetAccumulate keeps devices from earlier sessions, so repeated scans
	// accumulate into the same list.
	ResetAccumulate ResetPolicy = "accumulate"

	// ResetOnStart clears the list each time a session starts.
	ResetOnStart ResetPolicy = "reset-on-start"
)

// ParseResetPolicy parses a reset policy from its name.
// An empty name returns [ResetAccumulate].
func ParseResetPolicy(name string) (ResetPolicy, error) {
	switch policy := ResetPolicy(strings.TrimSpace(strings.ToLower(name))); policy {
	case "":
		return ResetAccumulate, nil

	case ResetAccumulate, ResetOnStart:
		return policy, nil
	}

	return "", fmt.Errorf("%w: '%s' (valid policies are '%s', '%s')",
		ErrInvalidResetPolicy, name, ResetAccumulate, ResetOnStart,
	)
}

// Options holds the options for a discovery session.
type Options struct {
	ResetPolicy ResetPolicy
	Logger      zerolog.Logger
}

// Session holds all discovery state for one owner: the permission gate,
// the discovered device registry, the session controller and the
// bonded device snapshotter.
type Session struct {
	gate       *Gate
	registry   *Registry
	controller *Controller
	bonded     *BondedSnapshotter

	policy    ResetPolicy
	log       zerolog.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewSession returns a new discovery session. If radio is nil, the session is
// returned along with [ErrRadioUnavailable], and every start is a no-op.
func NewSession(radio Radio, host PermissionHost, opts Options) (*Session, error) {
	policy := opts.ResetPolicy
	if policy == "" {
		policy = ResetAccumulate
	}
	if _, err := ParseResetPolicy(string(policy)); err != nil {
		return nil, err
	}

	log := opts.Logger.With().Str("component", "discovery").Logger()

	gate := NewGate(host, log)
	registry := NewRegistry()
	adapter := NewEventAdapter(gate, registry, log)

	s := &Session{
		gate:       gate,
		registry:   registry,
		controller: NewController(gate, radio, adapter, log),
		bonded:     NewBondedSnapshotter(gate, radio, log),
		policy:     policy,
		log:        log,
	}

	if policy == ResetOnStart {
		s.controller.beforeStart = registry.Clear
	}

	if radio == nil {
		log.Warn().Msg("No radio is available, discovery is disabled")
		return s, ErrRadioUnavailable
	}

	return s, nil
}

// Gate returns the session's permission gate.
func (s *Session) Gate() *Gate {
	return s.gate
}

// Registry returns the discovered device registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Policy returns the session's reset policy.
func (s *Session) Policy() ResetPolicy {
	return s.policy
}

// Start starts discovery. See [Controller.Start].
func (s *Session) Start() (*Subscription, error) {
	return s.controller.Start()
}

// RequestAndStart starts discovery if it is authorized. Otherwise, the missing
// capabilities are requested first, unless there is no radio, and discovery starts only if all of them
// are granted. done is called once with the outcome, possibly from another goroutine.
func (s *Session) RequestAndStart(done func(*Subscription, error)) {
	if done == nil {
		done = func(*Subscription, error) {}
	}

	if s.controller.radio == nil {
		done(nil, ErrRadioUnavailable)
		return
	}

	missing := s.gate.Missing()
	if len(missing) == 0 {
		done(s.Start())
		return
	}

	s.gate.RequestAuthorization(missing, func(grants Grants) {
		for _, capability := range missing {
			if !grants[capability] {
				done(nil, ErrNotAuthorized)
				return
			}
		}

		done(s.Start())
	})
}

// Stop stops discovery. See [Controller.Stop].
func (s *Session) Stop() error {
	return s.controller.Stop()
}

// State returns the state of discovery.
func (s *Session) State() State {
	return s.controller.State()
}

// Devices returns the discovered devices in arrival order.
func (s *Session) Devices() []DeviceRecord {
	return s.registry.Snapshot()
}

// Clear removes all discovered devices.
func (s *Session) Clear() {
	s.registry.Clear()
}

// SnapshotBonded returns the devices bonded to the host.
// See [BondedSnapshotter.SnapshotBonded].
func (s *Session) SnapshotBonded() ([]DeviceRecord, error) {
	return s.bonded.SnapshotBonded()
}

// Close stops discovery. Only the first call has any effect, so it is
// safe to defer it while also closing explicitly.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.controller.Stop()
	})

	return s.closeErr
}
