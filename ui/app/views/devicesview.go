package views

import (
	"strconv"

	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/ui/keybindings"
	"github.com/darkhz/bluescan/ui/theme"
)

const (
	discoveredPage viewName = "discovered"
	bondedPage     viewName = "bonded"
)

// devicesView holds the discovered and bonded device tables.
type devicesView struct {
	discovered *tview.Table
	bonded     *tview.Table

	unobserve func()

	*Views
}

// Initialize initializes the devices view.
func (d *devicesView) Initialize() error {
	d.discovered = d.newTable()
	d.bonded = d.newTable()

	d.unobserve = d.discovery.Session.Registry().Observe(func(discovery.Change) {
		go d.app.QueueDraw(d.listDiscovered)
	})
	d.listDiscovered()

	go d.actions.refreshBonded()

	return nil
}

// SetRootView sets the root view of the devices view.
func (d *devicesView) SetRootView(v *Views) {
	d.Views = v
}

// Release stops listening for registry changes.
func (d *devicesView) Release() {
	if d.unobserve != nil {
		d.unobserve()
	}
}

// newTable returns a device table.
func (d *devicesView) newTable() *tview.Table {
	table := tview.NewTable()
	table.SetSelectorWrap(true)
	table.SetSelectable(true, false)
	table.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))
	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		key := d.kb.Key(event, keybindings.ContextDevices)
		if d.actions.invoke(key) {
			return nil
		}

		return ignoreDefaultEvent(event)
	})

	return table
}

// listDiscovered renders the discovered devices in first-seen order.
// It must be called from the drawing loop.
func (d *devicesView) listDiscovered() {
	d.setDevices(d.discovered, d.discovery.Session.Devices(), theme.ThemeDeviceDiscovered)
	d.header.refresh()
}

// listBonded renders the bonded devices in the order the host reported them.
// It must be called from the drawing loop.
func (d *devicesView) listBonded(records []discovery.DeviceRecord) {
	d.setDevices(d.bonded, records, theme.ThemeDeviceBonded)
}

// setDevices replaces the rows of the table with the provided records,
// keeping the current selection where possible.
func (d *devicesView) setDevices(table *tview.Table, records []discovery.DeviceRecord, themeContext theme.Context) {
	row, _ := table.GetSelection()

	table.Clear()
	for i, record := range records {
		d.setInfo(table, i, record, themeContext)
	}

	if len(records) == 0 {
		return
	}

	table.Select(min(row, len(records)-1), 0)
}

// setInfo writes device information into the specified row of a device table.
func (d *devicesView) setInfo(table *tview.Table, row int, record discovery.DeviceRecord, themeContext theme.Context) {
	table.SetCell(
		row, 0, tview.NewTableCell(strconv.Itoa(row+1)+".").
			SetAlign(tview.AlignRight).
			SetTextColor(theme.GetColor(theme.ThemeDeviceProperty)),
	)

	table.SetCell(
		row, 1, tview.NewTableCell(record.Name).
			SetExpansion(1).
			SetReference(record).
			SetAlign(tview.AlignLeft).
			SetAttributes(tcell.AttrBold).
			SetTextColor(theme.GetColor(themeContext)).
			SetSelectedStyle(tcell.Style{}.
				Foreground(theme.GetColor(themeContext)).
				Background(theme.BackgroundColor(themeContext)),
			),
	)

	table.SetCell(
		row, 2, tview.NewTableCell(record.Identity()).
			SetAlign(tview.AlignRight).
			SetTextColor(theme.GetColor(theme.ThemeDeviceAddress)).
			SetSelectedStyle(tcell.Style{}.
				Bold(true),
			),
	)
}

// focused returns the device table which is currently displayed.
func (d *devicesView) focused() *tview.Table {
	if d.pages.frontPage() == bondedPage {
		return d.bonded
	}

	return d.discovered
}
