package discovery

import (
	"github.com/rs/zerolog"
)

// EventAdapter converts found-device notifications into registry insertions.
type EventAdapter struct {
	gate     *Gate
	registry *Registry
	log      zerolog.Logger
}

// NewEventAdapter returns a new event adapter.
func NewEventAdapter(gate *Gate, registry *Registry, log zerolog.Logger) *EventAdapter {
	return &EventAdapter{
		gate:     gate,
		registry: registry,
		log:      log,
	}
}

// Deliver handles a single found-device notification, and returns whether
// a new device was added to the registry. The event is dropped if the connect
// capability is not granted at the time of delivery.
func (a *EventAdapter) Deliver(event FoundEvent) bool {
	if !a.gate.CanConnect() {
		a.log.Debug().
			Str("address", event.Address.String()).
			Msg("Dropped found event, connect capability is not granted")

		return false
	}

	return a.registry.InsertIfAbsent(NewDeviceRecord(event.Address, event.Name))
}
