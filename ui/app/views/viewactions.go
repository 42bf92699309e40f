package views

import (
	"errors"
	"strconv"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/ui/keybindings"
)

// viewActions holds an instance of a view actions manager,
// which maps the device table keys to their respective actions.
type viewActions struct {
	rv *Views

	fnmap map[keybindings.Key]func()
}

// newViewActions returns a new view actions manager.
func newViewActions(rv *Views) *viewActions {
	v := &viewActions{rv: rv}

	v.fnmap = map[keybindings.Key]func(){
		keybindings.KeyScanToggle:      v.scan,
		keybindings.KeyBondedRefresh:   v.refreshBonded,
		keybindings.KeyDiscoveredClear: v.clear,
		keybindings.KeySwitch:          v.switchTable,
		keybindings.KeyQuit:            v.quit,
	}

	return v
}

// invoke runs the action assigned to the key in the background,
// and reports whether the key had an action.
func (v *viewActions) invoke(key keybindings.Key) bool {
	handler, ok := v.fnmap[key]
	if !ok {
		return false
	}

	go handler()

	return true
}

// scan starts a discovery session if none is running, otherwise it stops the running session.
func (v *viewActions) scan() {
	session := v.rv.discovery.Session

	if session.State() == discovery.StateScanning {
		if err := session.Stop(); err != nil {
			v.rv.status.ErrorMessage(err)
		} else {
			v.rv.status.InfoMessage("Scanning stopped", false)
		}

		v.rv.app.QueueDraw(v.rv.header.refresh)

		return
	}

	v.rv.request.begin(
		func() {
			type result struct {
				sub *discovery.Subscription
				err error
			}

			started := make(chan result, 1)
			session.RequestAndStart(func(sub *discovery.Subscription, err error) {
				started <- result{sub, err}
			})

			r := <-started
			if r.err != nil {
				if errors.Is(r.err, discovery.ErrNotAuthorized) {
					v.rv.status.ErrorMessage(errors.New("scanning is not permitted, missing " + discovery.CapabilityList(session.Gate().Missing()).String()))
				} else {
					v.rv.status.ErrorMessage(r.err)
				}

				return
			}

			v.rv.status.InfoMessage("Scanning for devices...", true)
			v.rv.app.QueueDraw(v.rv.header.refresh)

			go v.watch(r.sub)
		},
		func() {
			if err := session.Stop(); err != nil {
				v.rv.status.ErrorMessage(err)
			}
		},
	)
}

// watch waits for the discovery session to end, and updates the header.
func (v *viewActions) watch(sub *discovery.Subscription) {
	<-sub.Done()

	if sub.Completed() {
		v.rv.status.InfoMessage("Scan completed, "+strconv.Itoa(v.rv.discovery.Session.Registry().Len())+" devices found", false)
	}

	v.rv.app.QueueDraw(v.rv.header.refresh)
}

// refreshBonded replaces the bonded devices table with the devices currently bonded to the host.
func (v *viewActions) refreshBonded() {
	records, err := v.rv.discovery.Session.SnapshotBonded()
	if err != nil {
		v.rv.status.ErrorMessage(err)
	}

	v.rv.app.QueueDraw(func() {
		v.rv.devices.listBonded(records)
	})

	if err == nil {
		v.rv.status.InfoMessage(strconv.Itoa(len(records))+" bonded devices", false)
	}
}

// clear removes all the discovered devices.
func (v *viewActions) clear() {
	v.rv.discovery.Session.Clear()
	v.rv.status.InfoMessage("Discovered devices cleared", false)
}

// switchTable switches between the discovered and bonded devices tables.
func (v *viewActions) switchTable() {
	v.rv.app.QueueDraw(func() {
		v.rv.pages.SwitchToPage(v.rv.pages.nextPage().String())
		v.rv.app.FocusPrimitive(v.rv.devices.focused())
	})
}

// quit stops any running discovery session and exits the application.
func (v *viewActions) quit() {
	if err := v.rv.discovery.Session.Stop(); err != nil {
		v.rv.log.Warn().Err(err).Msg("Cannot stop discovery on exit")
	}

	v.rv.app.Close()
}
