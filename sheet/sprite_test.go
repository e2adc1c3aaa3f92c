package sheet

import (
	"image"
	"testing"

	"badc0de.net/pkg/go-spritesheet/sstesting"
)

func TestTrimAlpha(t *testing.T) {
	img := sstesting.SolidFrame(10, 8, image.Rect(3, 2, 7, 6), frameColor)
	trimmed := trimAlpha(img)
	sstesting.AssertEqualRect(t, "content box", trimmed.Bounds(), image.Rect(0, 0, 4, 4))
	if got := trimmed.NRGBAAt(0, 0); got != frameColor {
		t.Errorf("top-left of trimmed content = %v; want %v", got, frameColor)
	}
}

func TestTrimAlphaSinglePixel(t *testing.T) {
	img := sstesting.SolidFrame(9, 9, image.Rect(4, 4, 5, 5), frameColor)
	trimmed := trimAlpha(img)
	sstesting.AssertEqualRect(t, "content box", trimmed.Bounds(), image.Rect(0, 0, 1, 1))
}

func TestTrimAlphaFullyTransparent(t *testing.T) {
	// A fully transparent frame trims to a 1x1 center pixel so layout
	// never sees a zero-sized cell.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	trimmed := trimAlpha(img)
	sstesting.AssertEqualRect(t, "content box", trimmed.Bounds(), image.Rect(0, 0, 1, 1))
	if got := trimmed.NRGBAAt(0, 0).A; got != 0 {
		t.Errorf("center pixel alpha = %d; want 0", got)
	}
}
