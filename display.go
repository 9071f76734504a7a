package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thiefmaster/flowerlight/color"
)

func renderSwatches(colors []string) string {
	if len(colors) == 0 {
		return "(no colors)"
	}
	cells := make([]string, 0, len(colors))
	for _, c := range colors {
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(c)).
			Foreground(lipgloss.Color(labelColor(c))).
			Padding(0, 1)
		cells = append(cells, style.Render(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderSchemePreview shows what the lamp will actually display: each color
// after a round trip through the hue/saturation word.
func renderSchemePreview(args []string) string {
	var lamp []string
	for _, c := range color.ParseListLenient(strings.Join(args, " ")) {
		w, err := color.EncodeHS(c)
		if err != nil {
			continue
		}
		lamp = append(lamp, color.DecodeHS(w))
	}
	return renderSwatches(lamp)
}

func labelColor(hex string) string {
	rgb, err := color.ParseHex(hex)
	if err != nil {
		return "#ffffff"
	}
	if 299*int(rgb.R)+587*int(rgb.G)+114*int(rgb.B) > 128000 {
		return "#000000"
	}
	return "#ffffff"
}
