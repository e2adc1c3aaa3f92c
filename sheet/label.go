package sheet

// This file contains row label rendering. Labels use the bundled Go Regular
// face so output does not depend on fonts installed on the machine the
// assembly runs on.

import (
	"image"
	"image/draw"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type labelFace struct {
	face font.Face
}

func newLabelFace(size int) (*labelFace, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parsing label font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating label face")
	}
	return &labelFace{face: face}, nil
}

// measure returns the ink bounding box of s relative to a dot at the origin.
// Min.Y is negative for any text with ink above the baseline; the layout
// subtracts it so the ink top lands exactly on the row's margin line.
func (l *labelFace) measure(s string) fixed.Rectangle26_6 {
	bounds, _ := font.BoundString(l.face, s)
	return bounds
}

// draw renders s in white with the baseline dot at dot.
func (l *labelFace) draw(dst draw.Image, s string, dot fixed.Point26_6) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: l.face,
		Dot:  dot,
	}
	d.DrawString(s)
}

func (l *labelFace) Close() error {
	return l.face.Close()
}
