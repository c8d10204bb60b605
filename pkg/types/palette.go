package types

// PaletteSize is the number of colours an event may use
const PaletteSize = 16

// PaletteColor names one entry of the 16-colour palette
type PaletteColor struct {
	Key  string
	Name string
}

var palette = [PaletteSize]PaletteColor{
	{"black", "Black"},
	{"blue", "Blue"},
	{"green", "Green"},
	{"cyan", "Cyan"},
	{"red", "Red"},
	{"magenta", "Magenta"},
	{"brown", "Brown"},
	{"lgray", "Light gray"},
	{"dgray", "Dark gray"},
	{"lblue", "Light blue"},
	{"lgreen", "Light green"},
	{"lcyan", "Light cyan"},
	{"lred", "Light red"},
	{"lmagenta", "Light magenta"},
	{"yellow", "Yellow"},
	{"white", "White"},
}

// Palette returns the palette entry for index, clamping out of range values
// to light gray.
func Palette(index int) PaletteColor {
	if index < 0 || index >= PaletteSize {
		return palette[7]
	}
	return palette[index]
}
