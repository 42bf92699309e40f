// Package radio implements the discovery radio on top of a Bluetooth session.
package radio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	"github.com/rs/zerolog"

	"github.com/darkhz/bluescan/discovery"
)

// Options describes the options for opening an adapter.
type Options struct {
	// Adapter holds the unique name (for example, hci0) or the address
	// of the adapter to use. The first adapter is used if it is empty.
	Adapter string

	// PowerOn powers the adapter on if it is powered off.
	PowerOn bool

	Logger zerolog.Logger
}

// Adapter is a discovery radio backed by a Bluetooth adapter.
type Adapter struct {
	session bluetooth.Session
	data    bluetooth.AdapterData
	log     zerolog.Logger
}

// Open selects an adapter from the session and prepares it for discovery.
// If no usable adapter exists, the returned error wraps [discovery.ErrRadioUnavailable].
func Open(session bluetooth.Session, opts Options) (*Adapter, error) {
	adapter, err := SelectAdapter(session, opts.Adapter)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		session: session,
		data:    adapter,
		log:     opts.Logger.With().Str("adapter", adapter.UniqueName).Logger(),
	}

	props, err := a.adapter().Properties()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", discovery.ErrRadioUnavailable, err)
	}

	if !props.Powered {
		if !opts.PowerOn {
			return nil, fmt.Errorf("%w: %s is powered off", discovery.ErrRadioUnavailable, props.UniqueName)
		}

		if err := a.adapter().SetPoweredState(true); err != nil {
			return nil, fmt.Errorf("%w: cannot power on %s: %w", discovery.ErrRadioUnavailable, props.UniqueName, err)
		}

		a.log.Info().Msg("Adapter powered on")
	}

	a.data = props

	return a, nil
}

// Data returns the properties of the adapter at the time it was opened.
func (a *Adapter) Data() bluetooth.AdapterData {
	return a.data
}

// IsScanning returns whether the adapter is discovering devices.
func (a *Adapter) IsScanning() (bool, error) {
	props, err := a.adapter().Properties()
	if err != nil {
		return false, err
	}

	return props.Discovering, nil
}

// StartScan starts device discovery on the adapter.
func (a *Adapter) StartScan() error {
	return a.adapter().StartDiscovery()
}

// CancelScan stops device discovery on the adapter.
func (a *Adapter) CancelScan() error {
	return a.adapter().StopDiscovery()
}

// BondedDevices returns the devices paired with the adapter.
func (a *Adapter) BondedDevices() ([]discovery.FoundEvent, error) {
	devices, err := a.adapter().Devices()
	if err != nil {
		return nil, err
	}

	bonded := make([]discovery.FoundEvent, 0, len(devices))
	for _, device := range devices {
		if !device.Paired && !device.Bonded {
			continue
		}

		bonded = append(bonded, foundEvent(device))
	}

	return bonded, nil
}

// Subscribe subscribes to the device and adapter events of the session, and
// forwards devices seen by this adapter as found-device notifications.
// Completion is reported once the adapter stops discovering on its own.
func (a *Adapter) Subscribe() (*discovery.Notifications, error) {
	deviceSub := bluetooth.DeviceEvent().Subscribe()
	if !deviceSub.Subscribable {
		return nil, errors.New("cannot subscribe to device events")
	}

	adapterSub := bluetooth.AdapterEvent().Subscribe()
	if !adapterSub.Subscribable {
		deviceSub.Unsubscribe()
		return nil, errors.New("cannot subscribe to adapter events")
	}

	found := make(chan discovery.FoundEvent, 16)
	completed := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		a.forward(ctx, deviceSub.C, adapterSub.C, found, completed)
	}()

	var once sync.Once

	return &discovery.Notifications{
		Found:     found,
		Completed: completed,
		Unsubscribe: func() {
			once.Do(func() {
				cancel()
				deviceSub.Unsubscribe()
				adapterSub.Unsubscribe()
				wg.Wait()
			})
		},
	}, nil
}

// forward converts session events into found-device notifications.
//
//gocyclo:ignore
func (a *Adapter) forward(
	ctx context.Context,
	deviceEvents <-chan bluetooth.Event[bluetooth.DeviceEventData],
	adapterEvents <-chan bluetooth.Event[bluetooth.AdapterEventData],
	found chan<- discovery.FoundEvent,
	completed chan<- struct{},
) {
	var discovering bool

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-deviceEvents:
			if !ok {
				return
			}

			if ev.Data.AssociatedAdapter != a.data.Address {
				continue
			}

			switch ev.Action {
			case bluetooth.EventActionAdded:

			// Devices already known to the adapter are not added again,
			// but their signal strength is updated when they are seen.
			case bluetooth.EventActionUpdated:
				if ev.Data.RSSI == 0 {
					continue
				}

			default:
				continue
			}

			select {
			case found <- foundEvent(a.device(ev.Data)):
			case <-ctx.Done():
				return
			}

		case ev, ok := <-adapterEvents:
			if !ok {
				return
			}

			if ev.Action != bluetooth.EventActionUpdated || ev.Data.Address != a.data.Address {
				continue
			}

			if ev.Data.Discovering {
				discovering = true
				continue
			}

			if !discovering {
				continue
			}

			if scanning, err := a.IsScanning(); err == nil && scanning {
				continue
			}

			close(completed)

			return
		}
	}
}

// device returns the properties of the device in the event. Events do not
// carry the device name, so the properties are read from the session, and
// the event data is used alone if that fails.
func (a *Adapter) device(data bluetooth.DeviceEventData) bluetooth.DeviceData {
	device, err := a.session.Device(data.Address).Properties()
	if err != nil {
		a.log.Debug().Err(err).Str("address", data.Address.String()).Msg("Cannot read device properties")

		return bluetooth.DeviceData{DeviceEventData: data}
	}

	device.RSSI = data.RSSI

	return device
}

// adapter returns the function call interface for the adapter.
func (a *Adapter) adapter() bluetooth.Adapter {
	return a.session.Adapter(a.data.Address)
}

// SelectAdapter returns the adapter matching the provided unique name or
// address, or the first adapter if name is empty.
func SelectAdapter(session bluetooth.Session, name string) (bluetooth.AdapterData, error) {
	adapters := session.Adapters()
	if len(adapters) == 0 {
		return bluetooth.AdapterData{}, fmt.Errorf("%w: no adapters were found", discovery.ErrRadioUnavailable)
	}

	if name == "" {
		return adapters[0], nil
	}

	for _, adapter := range adapters {
		if adapter.UniqueName == name || adapter.Address.String() == name {
			return adapter, nil
		}
	}

	return bluetooth.AdapterData{}, fmt.Errorf("%w: %s: the adapter does not exist", discovery.ErrRadioUnavailable, name)
}

// foundEvent converts device data into a found-device notification.
func foundEvent(device bluetooth.DeviceData) discovery.FoundEvent {
	return discovery.FoundEvent{
		Address: device.Address,
		Name:    device.Name,
		RSSI:    device.RSSI,
		Class:   device.Class,
	}
}
