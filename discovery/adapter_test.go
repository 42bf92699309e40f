package discovery

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEventAdapterDeliver(t *testing.T) {
	host := grantedHost()
	registry := NewRegistry()
	adapter := NewEventAdapter(NewGate(host, zerolog.Nop()), registry, zerolog.Nop())

	assert.True(t, adapter.Deliver(found(t, "00:00:00:00:00:A1", "Foo")))
	assert.True(t, adapter.Deliver(found(t, "00:00:00:00:00:B2", "Bar")))
	assert.False(t, adapter.Deliver(found(t, "00:00:00:00:00:A1", "FooRenamed")))

	assert.Equal(t, []DeviceRecord{
		record(t, "00:00:00:00:00:A1", "Foo"),
		record(t, "00:00:00:00:00:B2", "Bar"),
	}, registry.Snapshot())
}

func TestEventAdapterUnknownName(t *testing.T) {
	registry := NewRegistry()
	adapter := NewEventAdapter(NewGate(grantedHost(), zerolog.Nop()), registry, zerolog.Nop())

	adapter.Deliver(found(t, "00:00:00:00:00:F3", ""))

	assert.Equal(t, []DeviceRecord{record(t, "00:00:00:00:00:F3", UnknownDeviceName)}, registry.Snapshot())
}

func TestEventAdapterDropsWithoutConnect(t *testing.T) {
	host := grantedHost()
	registry := NewRegistry()
	adapter := NewEventAdapter(NewGate(host, zerolog.Nop()), registry, zerolog.Nop())

	host.set(CapabilityConnect, false)
	assert.False(t, adapter.Deliver(found(t, "00:00:00:00:00:01", "One")))
	assert.Zero(t, registry.Len())

	host.set(CapabilityConnect, true)
	assert.True(t, adapter.Deliver(found(t, "00:00:00:00:00:01", "One")))
}
