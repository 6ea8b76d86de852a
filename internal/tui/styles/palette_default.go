package styles

// DefaultTheme is the baseline palette.
var DefaultTheme = Theme{
	Name: "default",
	Tokens: ThemeTokens{
		Background: "#0D1117",
		Panel:      "#161B22",
		Text:       "#E6EDF3",
		TextMuted:  "#7D8590",
		Border:     "#30363D",
		Accent:     "#539BF5",
		Focus:      "#6CB6FF",
		Success:    "#57AB5A",
		Warning:    "#C69026",
		Error:      "#E5534B",
		Info:       "#539BF5",
	},
}
