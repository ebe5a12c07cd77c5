package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`             _     _                     _   `,
	`  __ _ _   _(_) __| | ___ _ __   ___  ___| |_ `,
	` / _' | | | | |/ _' |/ _ \ '_ \ / _ \/ __| __|`,
	`| (_| | |_| | | (_| |  __/ |_) | (_) \__ \ |_ `,
	` \__, |\__,_|_|\__,_|\___| .__/ \___/|___/\__|`,
	` |___/                   |_|                  `,
}

var bannerColors = []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8"}

// PrintBanner writes the guidepost banner, colored when w is a terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}

// PlacementStyle colors a placement hint for the walker header.
func PlacementStyle(w io.Writer, placement string) string {
	out := termenv.NewOutput(w)
	color := "#a3a3a3"
	switch placement {
	case "top", "bottom":
		color = "#60a5fa"
	case "left", "right":
		color = "#f472b6"
	case "center":
		color = "#facc15"
	}
	return out.String(placement).Foreground(out.Color(color)).String()
}
