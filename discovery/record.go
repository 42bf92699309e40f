// Package discovery manages radio device discovery sessions, the deduplicated
// set of discovered devices and snapshots of the devices bonded to the host.
package discovery

import (
	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
)

// UnknownDeviceName is the name given to a device which did not report one.
const UnknownDeviceName = "Unknown Device"

// DeviceRecord describes an observed or bonded peer device.
type DeviceRecord struct {
	// Address holds the hardware address of the device.
	// It is the identity of the device.
	Address bluetooth.MacAddress

	// Name holds the human-readable name of the device.
	Name string
}

// NewDeviceRecord returns a device record, substituting [UnknownDeviceName]
// for an empty name.
func NewDeviceRecord(address bluetooth.MacAddress, name string) DeviceRecord {
	if name == "" {
		name = UnknownDeviceName
	}

	return DeviceRecord{Address: address, Name: name}
}

// Identity returns the string form of the device's address.
func (d DeviceRecord) Identity() string {
	return d.Address.String()
}

// String returns the device's name and address, one per line.
func (d DeviceRecord) String() string {
	return d.Name + "\n" + d.Identity()
}

// FoundEvent is a notification from the radio that a device was seen.
type FoundEvent struct {
	// Address holds the hardware address of the device.
	Address bluetooth.MacAddress

	// Name holds the reported name of the device.
	// An empty value means the radio did not report a name.
	Name string

	// RSSI holds the signal strength reported with the event, if any.
	RSSI int16

	// Class holds the device class specifier, if any.
	Class uint32
}
