// Package keybindings maps keyboard events to the actions of the device tables.
package keybindings

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key names an action which can be bound to a key.
type Key string

// The different actions.
const (
	KeyCancel          Key = "Cancel"
	KeySuspend         Key = "Suspend"
	KeyQuit            Key = "Quit"
	KeySwitch          Key = "Switch"
	KeyScanToggle      Key = "ScanToggle"
	KeyBondedRefresh   Key = "BondedRefresh"
	KeyDiscoveredClear Key = "DiscoveredClear"
	KeyNavigateUp      Key = "NavigateUp"
	KeyNavigateDown    Key = "NavigateDown"
	KeyNavigateTop     Key = "NavigateTop"
	KeyNavigateBottom  Key = "NavigateBottom"
)

// HelpKeys lists the keys shown in the help line, in display order.
var HelpKeys = []Key{
	KeyScanToggle,
	KeyBondedRefresh,
	KeyDiscoveredClear,
	KeySwitch,
	KeySuspend,
	KeyQuit,
}

// Context describes where a keybinding applies.
type Context string

// The different keybinding contexts.
const (
	ContextApp     Context = "App"
	ContextDevices Context = "Devices"
)

// KeyData holds an action's title and its binding.
type KeyData struct {
	Title   string
	Context Context
	Kb      Keybinding

	// Global bindings apply in every context, and may not
	// be shared with any other action.
	Global bool
}

// Keybinding describes a single key press.
type Keybinding struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

// navigation holds the key each navigation action is translated to.
var navigation = map[Key]Keybinding{
	KeyNavigateUp:     {tcell.KeyUp, ' ', tcell.ModNone},
	KeyNavigateDown:   {tcell.KeyDown, ' ', tcell.ModNone},
	KeyNavigateTop:    {tcell.KeyPgUp, ' ', tcell.ModNone},
	KeyNavigateBottom: {tcell.KeyPgDn, ' ', tcell.ModNone},
}

// keyAliases holds alternative spellings of tcell key names, in lowercase.
var keyAliases = map[string]string{
	"pageup":    "pgup",
	"pagedown":  "pgdn",
	"escape":    "esc",
	"return":    "enter",
	"backspace": "backspace2",
	"prtsc":     "print",
}

// Keybindings holds the binding of every action.
type Keybindings struct {
	keyData map[Key]*KeyData
	bound   map[Context]map[Keybinding]Key
}

// NewKeybindings returns the default keybindings.
func NewKeybindings() *Keybindings {
	k := &Keybindings{
		keyData: map[Key]*KeyData{
			KeyScanToggle:      {"Scan", ContextDevices, runeKey('s'), false},
			KeyBondedRefresh:   {"Refresh Bonded", ContextDevices, runeKey('r'), false},
			KeyDiscoveredClear: {"Clear", ContextDevices, runeKey('c'), false},
			KeySwitch:          {"Switch", ContextApp, Keybinding{tcell.KeyTab, ' ', tcell.ModNone}, true},
			KeyCancel:          {"Cancel", ContextApp, Keybinding{tcell.KeyCtrlX, ' ', tcell.ModCtrl}, true},
			KeySuspend:         {"Suspend", ContextApp, Keybinding{tcell.KeyCtrlZ, ' ', tcell.ModCtrl}, true},
			KeyQuit:            {"Quit", ContextApp, runeKey('Q'), true},
		},
	}

	for key, kb := range navigation {
		k.keyData[key] = &KeyData{
			Title:   strings.TrimPrefix(string(key), "Navigate"),
			Context: ContextApp,
			Kb:      kb,
		}
	}

	k.rebuild()

	return k
}

// Data returns the title and binding of the action.
func (k *Keybindings) Data(key Key) *KeyData {
	return k.keyData[key]
}

// Key returns the action bound to the event. The provided contexts are
// searched first, then every other context.
func (k *Keybindings) Key(event *tcell.EventKey, contexts ...Context) Key {
	pressed := Keybinding{Key: event.Key(), Rune: ' ', Mod: event.Modifiers()}
	if pressed.Key == tcell.KeyRune {
		pressed.Rune = event.Rune()
		if unicode.IsUpper(pressed.Rune) {
			pressed.Mod &^= tcell.ModShift
		}
	}

	for _, context := range append(contexts, ContextApp, ContextDevices) {
		if key, ok := k.bound[context][pressed]; ok {
			return key
		}
	}

	return ""
}

// Name returns a readable name for the binding, for example "Ctrl+Z" or "s".
func (k *Keybindings) Name(kb Keybinding) string {
	if kb.Key != tcell.KeyRune {
		return tcell.NewEventKey(kb.Key, kb.Rune, kb.Mod).Name()
	}

	name := string(kb.Rune)
	if kb.Rune == ' ' {
		name = "Space"
	}

	if kb.Mod&tcell.ModAlt != 0 {
		name = "Alt+" + name
	}

	return name
}

// IsNavigation returns the navigation event for a pressed navigation
// action which was rebound away from its navigation key.
func (k *Keybindings) IsNavigation(pressed Key, event *tcell.EventKey) (*tcell.EventKey, bool) {
	nav, ok := navigation[pressed]
	if !ok || event.Key() == nav.Key {
		return nil, false
	}

	return tcell.NewEventKey(nav.Key, nav.Rune, nav.Mod), true
}

// Validate applies the keybindings from the configuration, which map
// action names to key descriptions such as "Ctrl+d" or "x".
// Nothing is applied if any binding is invalid or conflicts with another.
func (k *Keybindings) Validate(kbMap map[string]string) error {
	if len(kbMap) == 0 {
		return nil
	}

	parsed := make(map[Key]Keybinding, len(kbMap))
	for name, value := range kbMap {
		key := Key(name)
		if _, ok := k.keyData[key]; !ok {
			return fmt.Errorf("config: invalid key type %s", name)
		}

		kb, err := parseKeybinding(value)
		if err != nil {
			return fmt.Errorf("config: %s (%s): %w", name, value, err)
		}

		parsed[key] = kb
	}

	previous := make(map[Key]Keybinding, len(parsed))
	for key, kb := range parsed {
		previous[key] = k.keyData[key].Kb
		k.keyData[key].Kb = kb
	}

	if conflicts := k.conflicts(); len(conflicts) > 0 {
		for key, kb := range previous {
			k.keyData[key].Kb = kb
		}

		return fmt.Errorf("config: the following keybindings will conflict:\n%s", strings.Join(conflicts, "\n"))
	}

	k.rebuild()

	return nil
}

// conflicts lists the actions sharing a binding within a context,
// or sharing a binding with a global action.
func (k *Keybindings) conflicts() []string {
	var conflicts []string

	for key, data := range k.keyData {
		for other, otherData := range k.keyData {
			if key >= other || data.Kb != otherData.Kb {
				continue
			}

			if data.Context == otherData.Context || data.Global || otherData.Global {
				conflicts = append(conflicts, fmt.Sprintf("- %s and %s (%s)", key, other, k.Name(data.Kb)))
			}
		}
	}

	slices.Sort(conflicts)

	return conflicts
}

// rebuild indexes the bindings by context.
func (k *Keybindings) rebuild() {
	k.bound = make(map[Context]map[Keybinding]Key)

	for key, data := range k.keyData {
		if k.bound[data.Context] == nil {
			k.bound[data.Context] = make(map[Keybinding]Key)
		}

		k.bound[data.Context][data.Kb] = key
	}
}

// parseKeybinding parses a key description made of modifiers and exactly one
// key, separated by spaces or '+'. Key names follow tcell, in any case.
func parseKeybinding(value string) (Keybinding, error) {
	var (
		kb       = runeKey(' ')
		keyCount int
	)

	lower := cases.Lower(language.Und)

	for _, token := range strings.FieldsFunc(value, func(c rune) bool {
		return unicode.IsSpace(c) || c == '+'
	}) {
		if runewidth.StringWidth(token) == 1 && utf8.RuneCountInString(token) == 1 {
			r, _ := utf8.DecodeRuneInString(token)
			kb.Key, kb.Rune = tcell.KeyRune, r
			keyCount++

			continue
		}

		name := lower.String(token)
		if alias, ok := keyAliases[name]; ok {
			name = alias
		}

		switch name {
		case "ctrl":
			kb.Mod |= tcell.ModCtrl

		case "alt":
			kb.Mod |= tcell.ModAlt

		case "shift":
			kb.Mod |= tcell.ModShift

		case "space", "plus":
			kb.Key, kb.Rune = tcell.KeyRune, ' '
			if name == "plus" {
				kb.Rune = '+'
			}
			keyCount++

		default:
			key, ok := namedKey(name)
			if !ok {
				return Keybinding{}, fmt.Errorf("unknown key %q", token)
			}

			kb.Key, kb.Rune = key, ' '
			keyCount++
		}
	}

	switch {
	case keyCount == 0:
		return Keybinding{}, fmt.Errorf("no key specified")

	case keyCount > 1:
		return Keybinding{}, fmt.Errorf("more than one key specified")
	}

	if kb.Key == tcell.KeyRune && kb.Mod&tcell.ModShift != 0 {
		kb.Rune = unicode.ToUpper(kb.Rune)
		if unicode.IsLetter(kb.Rune) {
			kb.Mod &^= tcell.ModShift
		}
	}

	// Terminals report Ctrl with a letter as a control key.
	if kb.Key == tcell.KeyRune && kb.Mod&tcell.ModCtrl != 0 {
		if key, ok := namedKey("ctrl-" + lower.String(string(kb.Rune))); ok {
			kb.Key, kb.Rune = key, ' '
		}
	}

	return kb, nil
}

// namedKey returns the tcell key with the lowercase name.
func namedKey(name string) (tcell.Key, bool) {
	for key, keyName := range tcell.KeyNames {
		if strings.EqualFold(keyName, name) {
			return key, true
		}
	}

	return 0, false
}

// runeKey returns a binding for a printable character.
func runeKey(r rune) Keybinding {
	return Keybinding{tcell.KeyRune, r, tcell.ModNone}
}
