package views

import (
	"strings"

	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"

	"github.com/darkhz/bluescan/ui/keybindings"
	"github.com/darkhz/bluescan/ui/theme"
)

// helpView shows the main keybindings below the status bar.
type helpView struct {
	area *tview.Flex

	*Views
}

// Initialize builds the help area, unless help display is turned off.
func (h *helpView) Initialize() error {
	if h.cfg.Values.NoHelpDisplay {
		return nil
	}

	h.status.Help.SetText(h.helpText())
	h.area = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(separator(), 1, 0, false).
		AddItem(h.status.Help, 1, 0, false)

	return nil
}

// SetRootView sets the root view for the help view.
func (h *helpView) SetRootView(v *Views) {
	h.Views = v
}

// attach appends the help area to the layout.
func (h *helpView) attach() {
	if h.area != nil {
		h.layout.AddItem(h.area, 2, 0, false)
	}
}

// helpText lists each help key as "Title: Key".
func (h *helpView) helpText() string {
	var text strings.Builder

	for _, key := range keybindings.HelpKeys {
		data := h.kb.Data(key)
		if data == nil {
			continue
		}

		if text.Len() > 0 {
			text.WriteString(theme.ColorWrap(theme.ThemeText, ", "))
		}

		text.WriteString(theme.ColorWrap(theme.ThemeText, data.Title, "::bu"))
		text.WriteString(theme.ColorWrap(theme.ThemeText, ": "+h.kb.Name(data.Kb)))
	}

	return text.String()
}

// separator returns a single horizontal rule.
func separator() *tview.Box {
	style := tcell.StyleDefault.Foreground(theme.GetColor(theme.ThemeBorder))

	return tview.NewBox().
		SetBackgroundColor(theme.GetColor(theme.ThemeBackground)).
		SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
			for col := x; col < x+width; col++ {
				screen.SetContent(col, y, tview.BoxDrawingsLightHorizontal, nil, style)
			}

			return x, y, 0, 0
		})
}
