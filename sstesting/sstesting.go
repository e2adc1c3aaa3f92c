// Package sstesting contains helpers shared by this module's tests:
// synthetic frame images, temp-tree builders matching the renderer's folder
// contract, and small assert helpers.
package sstesting

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bradfitz/iter"
)

// SolidFrame returns a w x h transparent canvas with a solid-colored
// rectangle at content. The rectangle is what alpha-trimming should find.
func SolidFrame(w, h int, content image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := content.Min.Y; y < content.Max.Y; y++ {
		for x := content.Min.X; x < content.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// WriteFrame writes img as "<n>.png" into the strip folder dir.
func WriteFrame(t *testing.T, dir string, n int, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("%d.png", n))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating frame file: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encoding frame file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing frame file: %v", err)
	}
	return path
}

// StripDir creates the strip folder "<index>_<label>" under root.
func StripDir(t *testing.T, root string, index int, label string) string {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprintf("%d_%s", index, label))
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("creating strip folder: %v", err)
	}
	return dir
}

// FillStrip creates a strip folder with count frames numbered from 1, each a
// w x h canvas fully covered by a solid color.
func FillStrip(t *testing.T, root string, index int, label string, count, w, h int) string {
	t.Helper()
	dir := StripDir(t, root, index, label)
	for i := range iter.N(count) {
		WriteFrame(t, dir, i+1, SolidFrame(w, h, image.Rect(0, 0, w, h), color.NRGBA{200, 120, 40, 255}))
	}
	return dir
}

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

func AssertEqualRect(t *testing.T, name string, got, want image.Rectangle) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %v; want %v", got, want)
		}
	})
}
