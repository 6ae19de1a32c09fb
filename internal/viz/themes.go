package viz

import "github.com/charmbracelet/lipgloss"

// Theme pairs the TUI colors with the palette used when recording.
type Theme struct {
	Name    string
	Palette string
	Field   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeViridis = Theme{
		Name:    "viridis",
		Palette: "viridis",
		Field:   lipgloss.Color("#5ec962"),
		Accent:  lipgloss.Color("#fde725"),
		Text:    lipgloss.Color("#e8f4ea"),
		Muted:   lipgloss.Color("#3b528b"),
		Warning: lipgloss.Color("#ff8800"),
	}

	ThemeInferno = Theme{
		Name:    "inferno",
		Palette: "inferno",
		Field:   lipgloss.Color("#f98e09"),
		Accent:  lipgloss.Color("#fcffa4"),
		Text:    lipgloss.Color("#fff5e6"),
		Muted:   lipgloss.Color("#57106e"),
		Warning: lipgloss.Color("#ff4444"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Palette: "gray",
		Field:   lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#777777"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	CurrentTheme = ThemeViridis

	Themes = []Theme{
		ThemeViridis,
		ThemeInferno,
		ThemeMono,
	}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeViridis
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
