package theme

import (
	"github.com/gdamore/tcell/v2"
)

// ColorWrap wraps the content in the color tag of the theme element.
// The attributes default to bold.
func ColorWrap(element Context, content string, attributes ...string) string {
	attr := "::b"
	if len(attributes) > 0 {
		attr = attributes[0]
	}

	return "[" + ThemeConfig[element] + attr + "]" + content + "[-:-:-]"
}

// GetColor returns the color of the theme element.
func GetColor(element Context) tcell.Color {
	name := ThemeConfig[element]
	if name == "black" {
		// tcell.ColorBlack is drawn as the terminal default.
		return tcell.Color16
	}

	return tcell.GetColor(name)
}

// BackgroundColor returns black or white, whichever is readable
// behind text drawn in the theme element's color.
func BackgroundColor(element Context) tcell.Color {
	r, g, b := GetColor(element).RGB()

	// Perceived brightness, on a scale of 0 to 255.
	if (r*299+g*587+b*114)/1000 > 130 {
		return tcell.ColorBlack
	}

	return tcell.ColorWhite
}

// validColor returns whether the name is a color tcell knows,
// or "transparent".
func validColor(name string) bool {
	return name == "transparent" || tcell.GetColor(name) != tcell.ColorDefault
}
