package discovery

// Radio describes the radio subsystem of the host.
type Radio interface {
	// IsScanning returns whether the radio is currently discovering devices.
	IsScanning() (bool, error)

	// StartScan puts the radio into discovery mode.
	StartScan() error

	// CancelScan stops discovery mode.
	CancelScan() error

	// Subscribe subscribes to found-device notifications.
	Subscribe() (*Notifications, error)

	// BondedDevices returns the devices bonded to the host, in the
	// order the host enumerates them.
	BondedDevices() ([]FoundEvent, error)
}

// Notifications holds a subscription to the radio's notifications.
type Notifications struct {
	// Found receives an event for each device seen during discovery.
	// It may be closed by the radio once discovery has completed.
	Found <-chan FoundEvent

	// Completed is closed or sent to when discovery completes without
	// being canceled. It may be nil if the radio cannot report completion.
	Completed <-chan struct{}

	// Unsubscribe releases the subscription. Once it returns, no more
	// notifications are sent.
	Unsubscribe func()
}
