package styles

// DefaultTheme is a dark palette. Drag uses a warm tone so the block in
// flight and its drop marker stand apart from the blue focus color.
var DefaultTheme = Theme{
	Name: "default",
	Tokens: ThemeTokens{
		Background: "#101418",
		Panel:      "#161C22",
		Text:       "#DCE3EA",
		TextMuted:  "#7D8A99",
		Border:     "#2A3440",
		Accent:     "#4FA3D9",
		Focus:      "#82B8F2",
		Drag:       "#F0A04B",
		Match:      "#D9C76A",
		Success:    "#4CC27A",
		Warning:    "#E0A43A",
		Error:      "#EF5B5B",
		Info:       "#6AB7E8",
	},
}

// HighContrastTheme uses pure colors for low-contrast terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Tokens: ThemeTokens{
		Background: "#000000",
		Panel:      "#000000",
		Text:       "#FFFFFF",
		TextMuted:  "#D0D0D0",
		Border:     "#FFFFFF",
		Accent:     "#00BFFF",
		Focus:      "#FFFF00",
		Drag:       "#FF8C00",
		Match:      "#FF00FF",
		Success:    "#00FF00",
		Warning:    "#FFC000",
		Error:      "#FF3030",
		Info:       "#80DFFF",
	},
}
