package types

import "slices"

// Reserved option names used when a checkbox field becomes a select field.
// They are not localized here.
const (
	CheckOptionName   = "CHECK"
	UncheckOptionName = "UNCHECK"
)

// SelectColor is a tag from the fixed option palette.
type SelectColor string

// Option palette.
const (
	ColorPurple    SelectColor = "purple"
	ColorPink      SelectColor = "pink"
	ColorLightPink SelectColor = "light_pink"
	ColorOrange    SelectColor = "orange"
	ColorYellow    SelectColor = "yellow"
	ColorLime      SelectColor = "lime"
	ColorGreen     SelectColor = "green"
	ColorAqua      SelectColor = "aqua"
	ColorBlue      SelectColor = "blue"
)

// DefaultColor is assigned to generated options.
const DefaultColor = ColorPurple

// Palette lists the colors in the order the editor cycles through them.
var Palette = []SelectColor{
	ColorPurple,
	ColorPink,
	ColorLightPink,
	ColorOrange,
	ColorYellow,
	ColorLime,
	ColorGreen,
	ColorAqua,
	ColorBlue,
}

// IsValidColor reports whether c is in the option palette.
func IsValidColor(c SelectColor) bool {
	return slices.Contains(Palette, c)
}

// SelectOption is one selectable choice of a single or multi select field.
// IDs are unique within the owning field's option list; names need not be.
type SelectOption struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Color SelectColor `json:"color"`
}
