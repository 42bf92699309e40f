package views

import (
	"strings"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/darkhz/bluescan/discovery"
	"github.com/darkhz/bluescan/permission"
	"github.com/darkhz/bluescan/ui/config"
	"github.com/darkhz/bluescan/ui/keybindings"
	"github.com/darkhz/bluescan/ui/theme"
)

// Root is what the application needs to display the views.
type Root struct {
	Layout    tview.Primitive
	Focus     tview.Primitive
	HandleKey func(event *tcell.EventKey) *tcell.EventKey
}

// AppBinder is the part of the application the views draw through.
type AppBinder interface {
	// QueueDraw runs drawFunc in the drawing loop, and redraws the
	// screen shortly after, together with other queued draws.
	QueueDraw(drawFunc func())

	// InstantDraw runs drawFunc in the drawing loop, and redraws at once.
	InstantDraw(drawFunc func())

	FocusPrimitive(primitive tview.Primitive)
	Focused() tview.Primitive

	// RequestSuspend suspends the application before the next draw.
	RequestSuspend()
	Close()
}

// Discovery holds the discovery session and the sources it is built from.
type Discovery struct {
	Session *discovery.Session
	Store   *permission.Store
	Adapter bluetooth.AdapterData
	Logger  zerolog.Logger
}

// view is a part of the screen, initialized after the root is set.
type view interface {
	SetRootView(v *Views)
	Initialize() error
}

// Views holds every view of the application, along with the
// keybindings and the actions they trigger.
type Views struct {
	pages  *viewPages
	layout *tview.Flex

	header  *headerView
	devices *devicesView
	status  *statusBarView
	help    *helpView

	actions *viewActions
	request *scanRequest

	kb  *keybindings.Keybindings
	cfg *config.Config
	app AppBinder

	discovery Discovery
	log       zerolog.Logger
}

// NewViews returns the views for the discovery session.
func NewViews(d Discovery) *Views {
	return &Views{
		header:    &headerView{},
		devices:   &devicesView{},
		status:    &statusBarView{},
		help:      &helpView{},
		discovery: d,
		log:       d.Logger.With().Str("component", "ui").Logger(),
	}
}

// Initialize builds every view, and returns the root to display.
func (v *Views) Initialize(binder AppBinder, cfg *config.Config) (*Root, error) {
	v.app, v.cfg, v.kb = binder, cfg, cfg.Values.Kb

	v.pages = newViewPages()
	v.layout = tview.NewFlex().SetDirection(tview.FlexRow)
	v.actions = newViewActions(v)
	v.request = newScanRequest(v)

	for _, part := range []view{v.header, v.devices, v.status, v.help} {
		part.SetRootView(v)

		if err := part.Initialize(); err != nil {
			return nil, err
		}
	}

	if v.discovery.Store != nil {
		v.discovery.Store.SetPrompt(v.status.promptCapabilities)
	}

	return &Root{
		Layout:    v.layout,
		Focus:     v.arrange(),
		HandleKey: v.handleKey,
	}, nil
}

// Release releases the resources held by the views.
func (v *Views) Release() {
	v.devices.Release()
	v.status.Release()
}

// handleKey handles the keys which apply everywhere. Navigation keys
// which were rebound are translated and sent to the focused view.
func (v *Views) handleKey(event *tcell.EventKey) *tcell.EventKey {
	pressed := v.kb.Key(event, v.pages.context())

	if nav, ok := v.kb.IsNavigation(pressed, event); ok {
		if focused := v.app.Focused(); focused != nil && focused.InputHandler() != nil {
			focused.InputHandler()(nav, nil)
			return nil
		}
	}

	switch pressed {
	case keybindings.KeySuspend:
		v.app.RequestSuspend()

	case keybindings.KeyCancel:
		v.request.cancel()
	}

	return event
}

// arrange lays out the header, tables, status bar and help,
// and returns the view to focus first.
func (v *Views) arrange() tview.Primitive {
	background := theme.GetColor(theme.ThemeBackground)

	v.pages.SetBackgroundColor(background)
	v.pages.onChange(v.header.refresh)
	v.pages.AddPage(bondedPage.String(), v.devices.bonded, true, false)
	v.pages.AddAndSwitchToPage(discoveredPage.String(), v.devices.discovered, true)

	v.layout.SetBackgroundColor(background)
	v.layout.
		AddItem(v.header.bar, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(v.pages, 0, 10, true).
		AddItem(v.status.Pages, 1, 0, false)
	v.help.attach()

	v.status.InfoMessage("bluescan is ready.", false)

	return v.devices.discovered
}

// viewName is the name of a page.
type viewName string

// String returns the name.
func (v viewName) String() string {
	return string(v)
}

// ignoreDefaultEvent drops the vi-style and paging keys the
// tables handle by default, since they are bound to other actions.
func ignoreDefaultEvent(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlF || event.Key() == tcell.KeyCtrlB {
		return nil
	}

	if event.Key() == tcell.KeyRune && strings.ContainsRune("gGjkhl", event.Rune()) {
		return nil
	}

	return event
}
