package keybindings

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeys(t *testing.T) {
	kb := NewKeybindings()

	tests := []struct {
		event    *tcell.EventKey
		expected Key
	}{
		{tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), KeyScanToggle},
		{tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), KeyBondedRefresh},
		{tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), KeyDiscoveredClear},
		{tcell.NewEventKey(tcell.KeyRune, 'Q', tcell.ModNone), KeyQuit},
		{tcell.NewEventKey(tcell.KeyTab, ' ', tcell.ModNone), KeySwitch},
		{tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, kb.Key(test.event, ContextDevices), test.event.Name())
	}
}

func TestValidateRebinds(t *testing.T) {
	kb := NewKeybindings()

	require.NoError(t, kb.Validate(map[string]string{
		"ScanToggle": "Ctrl+d",
		"Quit":       "x",
	}))

	assert.Equal(t, KeyScanToggle, kb.Key(tcell.NewEventKey(tcell.KeyCtrlD, ' ', tcell.ModCtrl)))
	assert.Equal(t, KeyQuit, kb.Key(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.Equal(t, Key(""), kb.Key(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone)))
	assert.Equal(t, "x", kb.Name(kb.Data(KeyQuit).Kb))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		kb   map[string]string
	}{
		{name: "unknown key type", kb: map[string]string{"Connect": "c"}},
		{name: "more than one key", kb: map[string]string{"ScanToggle": "a+b"}},
		{name: "conflict", kb: map[string]string{"BondedRefresh": "s"}},
		{name: "no key", kb: map[string]string{"ScanToggle": "Ctrl"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Error(t, NewKeybindings().Validate(test.kb))
		})
	}
}

func TestHelpKeysHaveData(t *testing.T) {
	kb := NewKeybindings()

	for _, key := range HelpKeys {
		require.NotNil(t, kb.Data(key), key)
		assert.NotEmpty(t, kb.Data(key).Title)
	}
}

func TestValidateConflictKeepsBindings(t *testing.T) {
	kb := NewKeybindings()

	require.Error(t, kb.Validate(map[string]string{"DiscoveredClear": "r"}))
	assert.Equal(t, KeyDiscoveredClear, kb.Key(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), ContextDevices))
	assert.Equal(t, "c", kb.Name(kb.Data(KeyDiscoveredClear).Kb))
}

func TestParseKeybinding(t *testing.T) {
	tests := []struct {
		value    string
		expected Keybinding
	}{
		{"x", Keybinding{tcell.KeyRune, 'x', tcell.ModNone}},
		{"Shift+x", Keybinding{tcell.KeyRune, 'X', tcell.ModNone}},
		{"alt x", Keybinding{tcell.KeyRune, 'x', tcell.ModAlt}},
		{"Space", Keybinding{tcell.KeyRune, ' ', tcell.ModNone}},
		{"pagedown", Keybinding{tcell.KeyPgDn, ' ', tcell.ModNone}},
		{"F5", Keybinding{tcell.KeyF5, ' ', tcell.ModNone}},
		{"ctrl+z", Keybinding{tcell.KeyCtrlZ, ' ', tcell.ModCtrl}},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			kb, err := parseKeybinding(test.value)
			require.NoError(t, err)
			assert.Equal(t, test.expected, kb)
		})
	}

	_, err := parseKeybinding("Hyper+x")
	assert.Error(t, err)
}

func TestIsNavigation(t *testing.T) {
	kb := NewKeybindings()
	require.NoError(t, kb.Validate(map[string]string{"NavigateDown": "j"}))

	pressed := tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone)

	event, ok := kb.IsNavigation(kb.Key(pressed), pressed)
	require.True(t, ok)
	assert.Equal(t, tcell.KeyDown, event.Key())

	_, ok = kb.IsNavigation(KeyNavigateUp, tcell.NewEventKey(tcell.KeyUp, ' ', tcell.ModNone))
	assert.False(t, ok)
}
