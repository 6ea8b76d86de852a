package styles

// HighContrastTheme favors visibility on low-contrast terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Tokens: ThemeTokens{
		Background: "#000000",
		Panel:      "#0A0A0A",
		Text:       "#FFFFFF",
		TextMuted:  "#BDBDBD",
		Border:     "#FFFFFF",
		Accent:     "#00B2FF",
		Focus:      "#FFD400",
		Success:    "#00E676",
		Warning:    "#FFB300",
		Error:      "#FF5252",
		Info:       "#80D8FF",
	},
}
