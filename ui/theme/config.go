package theme

import (
	"fmt"
)

// Context describes the type of context to apply the color into.
type Context string

// The different context types for themes.
const (
	ThemeText             Context = "Text"
	ThemeBorder           Context = "Border"
	ThemeBackground       Context = "Background"
	ThemeStatusInfo       Context = "StatusInfo"
	ThemeStatusError      Context = "StatusError"
	ThemeAdapter          Context = "Adapter"
	ThemeAdapterScanning  Context = "AdapterScanning"
	ThemeAdapterIdle      Context = "AdapterIdle"
	ThemeDevice           Context = "Device"
	ThemeDeviceAddress    Context = "DeviceAddress"
	ThemeDeviceDiscovered Context = "DeviceDiscovered"
	ThemeDeviceBonded     Context = "DeviceBonded"
	ThemeDeviceProperty   Context = "DeviceProperty"
	ThemeHeader           Context = "Header"
)

// ThemeConfig stores a list of color for the modifier elements.
var ThemeConfig = map[Context]string{
	ThemeText:        "white",
	ThemeBorder:      "white",
	ThemeBackground:  "default",
	ThemeStatusInfo:  "white",
	ThemeStatusError: "red",

	ThemeAdapter:         "white",
	ThemeAdapterScanning: "yellow",
	ThemeAdapterIdle:     "grey",

	ThemeDevice:           "white",
	ThemeDeviceAddress:    "grey",
	ThemeDeviceDiscovered: "orange",
	ThemeDeviceBonded:     "green",
	ThemeDeviceProperty:   "grey",

	ThemeHeader: "aqua",
}

// colorAliases holds color names which are stored as another color.
var colorAliases = map[string]string{
	"black":       "#000000",
	"transparent": "default",
}

// ParseThemeConfig checks every element color, and applies them only if all are valid.
func ParseThemeConfig(themeConfig map[string]string) error {
	parsed := make(map[Context]string, len(themeConfig))

	for element, color := range themeConfig {
		context := Context(element)
		if _, ok := ThemeConfig[context]; !ok {
			return fmt.Errorf("theme configuration has an unknown element %s", element)
		}

		if !validColor(color) {
			return fmt.Errorf("theme: %s has an invalid color %q", element, color)
		}

		if alias, ok := colorAliases[color]; ok {
			color = alias
		}

		parsed[context] = color
	}

	for context, color := range parsed {
		ThemeConfig[context] = color
	}

	return nil
}
