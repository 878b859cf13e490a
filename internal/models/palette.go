package models

// Color is one entry of the fixed status palette.
type Color struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HexValue  string `json:"hexValue"`
	TextColor string `json:"textColor"`
}

// DefaultColorID is used when a status is created without a color.
const DefaultColorID = "color-1"

// Palette lists the colors a status may reference, in display order.
var Palette = []Color{
	{ID: "color-1", Name: "Terracotta", HexValue: "#d4764f", TextColor: "#ffffff"},
	{ID: "color-2", Name: "Sage", HexValue: "#8a9a7b", TextColor: "#ffffff"},
	{ID: "color-3", Name: "Golden Sand", HexValue: "#e8c68f", TextColor: "#2d2520"},
	{ID: "color-4", Name: "Deep Earth", HexValue: "#4a3f35", TextColor: "#ffffff"},
	{ID: "color-5", Name: "Rust", HexValue: "#b85d38", TextColor: "#ffffff"},
	{ID: "color-6", Name: "Olive", HexValue: "#6b7a5d", TextColor: "#ffffff"},
	{ID: "color-7", Name: "Warm Amber", HexValue: "#d89b5a", TextColor: "#2d2520"},
	{ID: "color-8", Name: "Forest Moss", HexValue: "#4d5c3e", TextColor: "#ffffff"},
	{ID: "color-9", Name: "Clay", HexValue: "#a67c52", TextColor: "#ffffff"},
	{ID: "color-10", Name: "Stone", HexValue: "#7a7165", TextColor: "#ffffff"},
	{ID: "color-11", Name: "Soft Cream", HexValue: "#c9b896", TextColor: "#2d2520"},
	{ID: "color-12", Name: "Warm Brown", HexValue: "#6b5444", TextColor: "#ffffff"},
}

// ColorByID looks up a palette entry.
func ColorByID(id string) (Color, bool) {
	for _, c := range Palette {
		if c.ID == id {
			return c, true
		}
	}
	return Color{}, false
}
