package views

import (
	"strconv"
	"strings"

	"github.com/darkhz/tview"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/ui/theme"
)

// headerView holds the header, which contains the displays of:
// - The name of the adapter in use, and the table being shown.
// - The scanning state and the number of discovered devices.
type headerView struct {
	bar *tview.Flex

	adapterName *tview.TextView
	status      *tview.TextView

	*Views
}

// Initialize initializes the header.
func (h *headerView) Initialize() error {
	h.adapterName = tview.NewTextView()
	h.adapterName.SetDynamicColors(true)
	h.adapterName.SetTextAlign(tview.AlignLeft)
	h.adapterName.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	h.status = tview.NewTextView()
	h.status.SetDynamicColors(true)
	h.status.SetTextAlign(tview.AlignRight)
	h.status.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	h.bar = tview.NewFlex().
		AddItem(h.adapterName, 0, 1, false).
		AddItem(h.status, 0, 1, false)
	h.bar.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	return nil
}

// SetRootView sets the root view for the header.
func (h *headerView) SetRootView(v *Views) {
	h.Views = v
}

// refresh redraws the header. It must be called from the drawing loop.
func (h *headerView) refresh() {
	var name, status strings.Builder

	adapter := h.discovery.Adapter.UniqueName
	if adapter == "" {
		adapter = "No adapter"
	}

	title := "Discovered Devices"
	if h.pages.frontPage() == bondedPage {
		title = "Bonded Devices"
	}

	name.WriteString(theme.ColorWrap(theme.ThemeAdapter, adapter))
	name.WriteString(" ")
	name.WriteString(theme.ColorWrap(theme.ThemeHeader, title, "::u"))

	count := h.discovery.Session.Registry().Len()
	status.WriteString(theme.ColorWrap(theme.ThemeText, strconv.Itoa(count)+" discovered", ":"))
	status.WriteString(" ")

	if h.discovery.Session.State() == discovery.StateScanning {
		status.WriteString(theme.ColorWrap(theme.ThemeAdapterScanning, "Scanning"))
	} else {
		status.WriteString(theme.ColorWrap(theme.ThemeAdapterIdle, "Idle"))
	}

	h.adapterName.SetText(name.String())
	h.status.SetText(status.String())
}
