package pixelate_test

import (
	"fmt"
	"image"

	"badc0de.net/pkg/go-spritesheet/pixelate"
)

func ExamplePixelate() {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))

	cfg := pixelate.DefaultConfig()
	cfg.Factor = 8

	out, err := pixelate.Pixelate(img, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out.Bounds().Dx(), out.Bounds().Dy())
	// Output: 32 32
}
