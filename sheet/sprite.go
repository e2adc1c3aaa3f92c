package sheet

// This file contains per-sprite preparation: decoding a frame file, the
// optional pixelation pass, and trimming to the alpha bounding box that
// defines a sprite's natural size.

import (
	"image"
	"image/draw"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/pixelate"
)

// sprite is one prepared cell's content: a frame after pixelation and
// alpha-trimming. The image is normalized to zero-based bounds; its size is
// the sprite's natural size.
type sprite struct {
	frame int
	img   *image.NRGBA
}

func (s *sprite) width() int  { return s.img.Bounds().Dx() }
func (s *sprite) height() int { return s.img.Bounds().Dy() }

// loadSprite decodes the frame at path and prepares it for layout. A nil
// pixelation config skips the pixelation pass.
func loadSprite(frame Frame, cfg *pixelate.Config) (*sprite, error) {
	img, err := loadFrameImage(frame, cfg)
	if err != nil {
		return nil, err
	}
	return &sprite{frame: frame.Number, img: trimAlpha(img)}, nil
}

// LoadFrame decodes one discovered frame file, applying the optional
// pixelation pass. The frame keeps its full canvas; nothing is trimmed.
func LoadFrame(frame Frame, cfg *pixelate.Config) (*image.NRGBA, error) {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return loadFrameImage(frame, cfg)
}

// loadFrameImage decodes one frame file and runs the optional pixelation
// pass, keeping the frame's full canvas.
func loadFrameImage(frame Frame, cfg *pixelate.Config) (*image.NRGBA, error) {
	f, err := os.Open(frame.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening frame %d", frame.Number)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding frame %d", frame.Number)
	}

	if cfg != nil {
		return pixelate.Pixelate(img, *cfg)
	}
	return copyNRGBA(img), nil
}

// trimAlpha crops img to the tight bounding box of pixels with nonzero
// alpha. A fully transparent image trims to a single center pixel so layout
// never sees a zero-sized cell.
func trimAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	var content image.Rectangle
	if minX > maxX || minY > maxY {
		cx := b.Min.X + b.Dx()/2
		cy := b.Min.Y + b.Dy()/2
		content = image.Rect(cx, cy, cx+1, cy+1)
	} else {
		content = image.Rect(minX, minY, maxX+1, maxY+1)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, content.Dx(), content.Dy()))
	draw.Draw(dst, dst.Bounds(), img, content.Min, draw.Src)
	return dst
}

func copyNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
