package discovery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertIfAbsentKeepsFirstName(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.InsertIfAbsent(record(t, "00:00:00:00:00:A1", "Foo")))
	assert.True(t, r.InsertIfAbsent(record(t, "00:00:00:00:00:B2", "Bar")))
	assert.False(t, r.InsertIfAbsent(record(t, "00:00:00:00:00:A1", "FooRenamed")))

	assert.Equal(t, []DeviceRecord{
		record(t, "00:00:00:00:00:A1", "Foo"),
		record(t, "00:00:00:00:00:B2", "Bar"),
	}, r.Snapshot())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains(mac(t, "00:00:00:00:00:B2")))
}

func TestRegistryDistinctInFirstSeenOrder(t *testing.T) {
	addresses := []string{
		"11:11:11:11:11:03",
		"11:11:11:11:11:01",
		"11:11:11:11:11:03",
		"11:11:11:11:11:02",
		"11:11:11:11:11:01",
		"11:11:11:11:11:02",
	}

	r := NewRegistry()
	for _, address := range addresses {
		r.InsertIfAbsent(record(t, address, "dev"))
	}

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "11:11:11:11:11:03", snapshot[0].Identity())
	assert.Equal(t, "11:11:11:11:11:01", snapshot[1].Identity())
	assert.Equal(t, "11:11:11:11:11:02", snapshot[2].Identity())
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.InsertIfAbsent(record(t, "00:00:00:00:00:01", "One"))

	snapshot := r.Snapshot()
	snapshot[0].Name = "Changed"
	_ = append(snapshot, record(t, "00:00:00:00:00:02", "Two"))

	assert.Equal(t, []DeviceRecord{record(t, "00:00:00:00:00:01", "One")}, r.Snapshot())
}

func TestRegistryObserversNotifiedOncePerInsert(t *testing.T) {
	r := NewRegistry()

	var changes []Change
	cancel := r.Observe(func(change Change) {
		// Observers may read the registry while being notified.
		_ = r.Snapshot()
		changes = append(changes, change)
	})

	r.InsertIfAbsent(record(t, "00:00:00:00:00:01", "One"))
	r.InsertIfAbsent(record(t, "00:00:00:00:00:01", "One again"))
	r.Clear()

	require.Len(t, changes, 2)
	assert.Equal(t, ChangeInserted, changes[0].Kind)
	assert.Equal(t, "One", changes[0].Record.Name)
	assert.Equal(t, ChangeCleared, changes[1].Kind)

	cancel()
	r.InsertIfAbsent(record(t, "00:00:00:00:00:02", "Two"))
	assert.Len(t, changes, 2)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.InsertIfAbsent(record(t, "00:00:00:00:00:01", "One"))
	r.Clear()

	assert.Empty(t, r.Snapshot())
	assert.False(t, r.Contains(mac(t, "00:00:00:00:00:01")))
	assert.True(t, r.InsertIfAbsent(record(t, "00:00:00:00:00:01", "One")))
}

func TestRegistryConcurrentReaders(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		for i := range 200 {
			r.InsertIfAbsent(DeviceRecord{Address: [6]byte{byte(i), 1}, Name: "dev"})
		}
	}()

	go func() {
		defer wg.Done()

		for range 200 {
			snapshot := r.Snapshot()
			seen := make(map[[6]byte]struct{}, len(snapshot))
			for _, rec := range snapshot {
				_, dup := seen[rec.Address]
				assert.False(t, dup)
				seen[rec.Address] = struct{}{}
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, 200, r.Len())
}
