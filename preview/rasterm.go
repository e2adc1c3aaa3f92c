//go:build go1.13 && !windows
// +build go1.13,!windows

package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/BourgeoisBear/rasterm"
	"github.com/ericpauley/go-quantize/quantize"
)

// PrintRasTerm draws an image using the RasTerm library.
//
// This should enable drawing in Kitty terminal.
func PrintRasTerm(i image.Image) {
	if rasterm.IsTermKitty() {
		rasterm.Settings{}.KittyWriteImage(os.Stdout, i)
		fmt.Printf("\n")
		return
	}
	if rasterm.IsTermItermWez() {
		rasterm.Settings{}.ItermWriteImage(os.Stdout, i)
		fmt.Printf("\n")
		return
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		var q quantize.MedianCutQuantizer
		pal := q.Quantize(make([]color.Color, 0, 64), i)
		palettedImage := image.NewPaletted(i.Bounds(), pal)
		draw.Draw(palettedImage, i.Bounds(), i, i.Bounds().Min, draw.Src)

		rasterm.Settings{}.SixelWriteImage(os.Stdout, palettedImage)
		fmt.Printf("\n")
		return
	}
}
