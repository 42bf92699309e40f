package discovery

import (
	"fmt"

	"github.com/rs/zerolog"
)

// BondedSnapshotter reads the devices bonded to the host.
type BondedSnapshotter struct {
	gate  *Gate
	radio Radio
	log   zerolog.Logger
}

// NewBondedSnapshotter returns a new bonded device snapshotter.
func NewBondedSnapshotter(gate *Gate, radio Radio, log zerolog.Logger) *BondedSnapshotter {
	return &BondedSnapshotter{
		gate:  gate,
		radio: radio,
		log:   log,
	}
}

// SnapshotBonded returns the devices currently bonded to the host.
// Each result is a complete list and must replace any earlier one.
// An empty list is returned along with the error if the connect
// capability is not granted or the host cannot be read.
func (b *BondedSnapshotter) SnapshotBonded() ([]DeviceRecord, error) {
	if b.radio == nil {
		return []DeviceRecord{}, ErrRadioUnavailable
	}

	if !b.gate.CanConnect() {
		return []DeviceRecord{}, ErrNotAuthorized
	}

	devices, err := b.radio.BondedDevices()
	if err != nil {
		b.log.Warn().Err(err).Msg("Cannot enumerate bonded devices")
		return []DeviceRecord{}, fmt.Errorf("enumerate bonded devices: %w", err)
	}

	records := make([]DeviceRecord, 0, len(devices))
	for _, device := range devices {
		records = append(records, NewDeviceRecord(device.Address, device.Name))
	}

	return records, nil
}
