package discovery

import (
	"errors"
	"sync"
	"testing"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeHost is a permission host whose grants can be changed by tests.
type fakeHost struct {
	mu      sync.Mutex
	grants  map[Capability]bool
	answer  Grants
	prompts int
}

func newFakeHost(granted ...Capability) *fakeHost {
	h := &fakeHost{grants: make(map[Capability]bool)}
	for _, c := range granted {
		h.grants[c] = true
	}

	return h
}

func grantedHost() *fakeHost {
	return newFakeHost(RequiredCapabilities...)
}

func (h *fakeHost) IsGranted(c Capability) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.grants[c]
}

func (h *fakeHost) set(c Capability, granted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grants[c] = granted
}

func (h *fakeHost) PromptForGrant(capabilities []Capability, onResult func(Grants)) {
	h.mu.Lock()
	h.prompts++
	answer := h.answer
	for c, granted := range answer {
		h.grants[c] = granted
	}
	h.mu.Unlock()

	go onResult(answer)
}

// fakeRadio is a radio whose notifications are driven by tests.
type fakeRadio struct {
	mu sync.Mutex

	scanning     bool
	starts       int
	cancels      int
	subscribes   int
	unsubscribes int

	startErr     error
	subscribeErr error
	bonded       []FoundEvent
	unbuffered   bool

	// cancelCompletes reports completion when discovery is canceled,
	// like an adapter whose discovering flag turns off on cancel.
	cancelCompletes bool

	found     chan FoundEvent
	completed chan struct{}
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{}
}

func (r *fakeRadio) IsScanning() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.scanning, nil
}

func (r *fakeRadio) StartScan() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.startErr != nil {
		return r.startErr
	}

	r.starts++
	r.scanning = true

	return nil
}

func (r *fakeRadio) CancelScan() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancels++
	r.scanning = false

	if r.cancelCompletes && r.completed != nil {
		close(r.completed)
		r.completed = nil
	}

	return nil
}

func (r *fakeRadio) Subscribe() (*Notifications, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subscribeErr != nil {
		return nil, r.subscribeErr
	}

	r.subscribes++
	r.found = make(chan FoundEvent, 8)
	if r.unbuffered {
		r.found = make(chan FoundEvent)
	}
	r.completed = make(chan struct{})

	return &Notifications{
		Found:     r.found,
		Completed: r.completed,
		Unsubscribe: func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.unsubscribes++
		},
	}, nil
}

func (r *fakeRadio) BondedDevices() ([]FoundEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	devices := make([]FoundEvent, len(r.bonded))
	copy(devices, r.bonded)

	return devices, nil
}

func (r *fakeRadio) setBonded(devices ...FoundEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bonded = devices
}

func (r *fakeRadio) emit(ev FoundEvent) {
	r.mu.Lock()
	ch := r.found
	r.mu.Unlock()

	ch <- ev
}

func (r *fakeRadio) complete() {
	r.mu.Lock()
	r.scanning = false
	ch := r.completed
	r.completed = nil
	r.mu.Unlock()

	if ch != nil {
		close(ch)
	}
}

func (r *fakeRadio) counts() (starts, cancels, subscribes, unsubscribes int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.starts, r.cancels, r.subscribes, r.unsubscribes
}

var errRadio = errors.New("radio failure")

func mac(t *testing.T, s string) bluetooth.MacAddress {
	t.Helper()

	address, err := bluetooth.ParseMAC(s)
	require.NoError(t, err)

	return address
}

func found(t *testing.T, address, name string) FoundEvent {
	t.Helper()

	return FoundEvent{Address: mac(t, address), Name: name}
}

func record(t *testing.T, address, name string) DeviceRecord {
	t.Helper()

	return DeviceRecord{Address: mac(t, address), Name: name}
}

func newTestSession(t *testing.T, radio Radio, host PermissionHost, policy ResetPolicy) *Session {
	t.Helper()

	s, err := NewSession(radio, host, Options{ResetPolicy: policy, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}
