package theme

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThemeConfig(t *testing.T) {
	saved := make(map[Context]string, len(ThemeConfig))
	for k, v := range ThemeConfig {
		saved[k] = v
	}
	t.Cleanup(func() { ThemeConfig = saved })

	require.NoError(t, ParseThemeConfig(map[string]string{
		"DeviceBonded": "blue",
		"Background":   "transparent",
		"Text":         "black",
	}))

	assert.Equal(t, "blue", ThemeConfig[ThemeDeviceBonded])
	assert.Equal(t, "default", ThemeConfig[ThemeBackground])
	assert.Equal(t, "#000000", ThemeConfig[ThemeText])

	assert.Error(t, ParseThemeConfig(map[string]string{"DeviceBonded": "notacolor"}))
	assert.Error(t, ParseThemeConfig(map[string]string{"MenuBar": "white"}))

	assert.Error(t, ParseThemeConfig(map[string]string{
		"Header": "red",
		"Device": "notacolor",
	}))
	assert.Equal(t, saved[ThemeHeader], ThemeConfig[ThemeHeader])
}

func TestColorWrap(t *testing.T) {
	assert.Equal(t, "[yellow::b]Scanning[-:-:-]", ColorWrap(ThemeAdapterScanning, "Scanning"))
	assert.Equal(t, "[grey:]idle[-:-:-]", ColorWrap(ThemeAdapterIdle, "idle", ":"))
}

func TestBackgroundColor(t *testing.T) {
	assert.Equal(t, tcell.ColorBlack, BackgroundColor(ThemeAdapterScanning))
	assert.Equal(t, tcell.ColorWhite, BackgroundColor(ThemeStatusError))
}
