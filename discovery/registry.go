package discovery

import (
	"sync"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/atomic"
)

// ChangeKind describes the kind of change made to the registry.
type ChangeKind int

// The different kinds of registry changes.
const (
	ChangeInserted ChangeKind = iota
	ChangeCleared
)

// Change describes a change made to the registry.
type Change struct {
	Kind ChangeKind

	// Record holds the inserted record.
	// It is empty for a [ChangeCleared] change.
	Record DeviceRecord
}

// Observer describes a function that is called on each registry change.
type Observer func(change Change)

// Registry holds the discovered devices, ordered by their first arrival,
// with no two devices sharing an address.
type Registry struct {
	records []DeviceRecord
	index   map[bluetooth.MacAddress]struct{}
	mu      sync.RWMutex

	observers *xsync.MapOf[uint64, Observer]
	nextID    atomic.Uint64
}

// NewRegistry returns a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index:     make(map[bluetooth.MacAddress]struct{}),
		observers: xsync.NewMapOf[uint64, Observer](),
	}
}

// InsertIfAbsent appends the record if no record with the same address exists,
// and returns whether it was inserted. Observers are notified before this returns.
func (r *Registry) InsertIfAbsent(record DeviceRecord) bool {
	r.mu.Lock()
	if _, ok := r.index[record.Address]; ok {
		r.mu.Unlock()
		return false
	}

	r.index[record.Address] = struct{}{}
	r.records = append(r.records, record)
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeInserted, Record: record})

	return true
}

// Snapshot returns a copy of the registry contents in insertion order.
func (r *Registry) Snapshot() []DeviceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]DeviceRecord, len(r.records))
	copy(records, r.records)

	return records
}

// Contains returns whether a device with the address exists in the registry.
func (r *Registry) Contains(address bluetooth.MacAddress) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.index[address]

	return ok
}

// Len returns the number of devices in the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}

// Clear removes all devices from the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.records = nil
	r.index = make(map[bluetooth.MacAddress]struct{})
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeCleared})
}

// Observe registers an observer and returns a function to unregister it.
func (r *Registry) Observe(observer Observer) func() {
	id := r.nextID.Inc()
	r.observers.Store(id, observer)

	return func() {
		r.observers.Delete(id)
	}
}

// notify calls every registered observer with the change.
func (r *Registry) notify(change Change) {
	r.observers.Range(func(_ uint64, observer Observer) bool {
		observer(change)

		return true
	})
}
