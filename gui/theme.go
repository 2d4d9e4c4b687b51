//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// darkTheme matches the terminal UI: near-black panel, green accent for the
// beat and the play button.
type darkTheme struct{}

var (
	panelColor  = color.RGBA{18, 18, 18, 255}
	textColor   = color.RGBA{200, 200, 200, 255}
	accentColor = color.RGBA{52, 199, 89, 255}
)

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return panelColor
	case theme.ColorNameForeground:
		return textColor
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return accentColor
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return 13
	}
	return theme.DefaultTheme().Size(name)
}
