package views

import (
	"github.com/darkhz/tview"
	"go.uber.org/atomic"

	"github.com/darkhz/bluescan/ui/keybindings"
)

// viewPages switches between the discovered and bonded tables.
type viewPages struct {
	front atomic.String

	*tview.Pages
}

// newViewPages returns pages which start on the discovered table.
func newViewPages() *viewPages {
	p := &viewPages{Pages: tview.NewPages()}
	p.front.Store(discoveredPage.String())

	return p
}

// frontPage returns the name of the page being displayed.
// It is safe to call outside the drawing loop.
func (p *viewPages) frontPage() viewName {
	return viewName(p.front.Load())
}

// context returns the keybinding context of the page being displayed.
func (p *viewPages) context() keybindings.Context {
	switch p.frontPage() {
	case discoveredPage, bondedPage:
		return keybindings.ContextDevices
	}

	return keybindings.ContextApp
}

// nextPage returns the table to show when switching tables.
func (p *viewPages) nextPage() viewName {
	if p.frontPage() == discoveredPage {
		return bondedPage
	}

	return discoveredPage
}

// onChange records the front page on every page change, then calls changed.
func (p *viewPages) onChange(changed func()) {
	p.SetChangedFunc(func() {
		if name, _ := p.GetFrontPage(); name != "" {
			p.front.Store(name)
		}

		changed()
	})
}
