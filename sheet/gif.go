package sheet

// This file contains animated GIF export of a single discovered strip,
// mostly useful for previewing one animation without assembling the whole
// sheet.

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/pixelate"
)

// ErrEmptyStrip is wrapped by EncodeStripGIF when a strip contributes no
// frames at all, either because its folder is still empty or because every
// frame failed to decode. The GIF codec cannot represent a zero-frame
// animation, so there is nothing to emit.
var ErrEmptyStrip = errors.New("strip has no usable frames")

// GIFOptions configures strip GIF export.
type GIFOptions struct {
	// Delay between frames in hundredths of a second; 0 means 10 (ten
	// frames per second).
	Delay int

	// Pixelation, when non-nil, is applied to every frame.
	Pixelation *pixelate.Config
}

// EncodeStripGIF renders one strip as an animated GIF. Frames that fail to
// decode are skipped, same as during sheet assembly. Transparency is kept by
// reserving the first palette entry.
func EncodeStripGIF(w io.Writer, strip Strip, opts GIFOptions) error {
	if opts.Pixelation != nil {
		if err := opts.Pixelation.Validate(); err != nil {
			return err
		}
	}
	delay := opts.Delay
	if delay == 0 {
		delay = 10
	}

	g := gif.GIF{}
	var q quantize.MedianCutQuantizer
	for _, frame := range strip.Frames {
		// The frame keeps its full canvas here, so all frames of a
		// uniform-sized strip line up without per-frame offsets.
		sp, err := loadFrameImage(frame, opts.Pixelation)
		if err != nil {
			glog.Errorf("skipping strip %d (%q) frame %d: %v", strip.Index, strip.Label, frame.Number, err)
			continue
		}

		// The quantizer computes the palette without copying pixels;
		// prepending the transparent entry means empty areas of the
		// paletted frame default to it.
		pal := q.Quantize(make([]color.Color, 0, 255), sp)
		paletted := image.NewPaletted(sp.Bounds(), append(color.Palette{color.Transparent}, pal...))
		draw.Draw(paletted, sp.Bounds(), sp, sp.Bounds().Min, draw.Over)

		g.Image = append(g.Image, paletted)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
		g.BackgroundIndex = 0
	}

	if len(g.Image) == 0 {
		return errors.Wrapf(ErrEmptyStrip, "strip %d (%q)", strip.Index, strip.Label)
	}
	return gif.EncodeAll(w, &g)
}
