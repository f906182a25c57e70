package main

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed assets/icon.svg
var iconSVG []byte

var resourceIcon = fyne.NewStaticResource("icon.svg", iconSVG)
