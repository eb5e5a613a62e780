// Package resources embeds the data files shipped with the binary.
package resources

import (
	"embed"

	"fyne.io/fyne/v2"
)

//go:embed icons/app_256.png
var iconData []byte

func GetAppIcon() fyne.Resource {
	return &fyne.StaticResource{
		StaticName:    "app_256.png",
		StaticContent: iconData,
	}
}

//go:embed stats/*.yaml
var StatFiles embed.FS

// RedDotPNG is the default badge template.
//
//go:embed templates/red-dot.png
var RedDotPNG []byte
