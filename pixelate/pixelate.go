// Package pixelate reduces an image's apparent resolution and color depth to
// produce a blocky, retro look, without changing the image's pixel dimensions.
//
// The transform downsamples under a configurable interpolation kernel, scales
// back up with nearest-neighbor so block edges stay hard, quantizes the HSV
// value channel into a configurable number of levels, and finally thresholds
// and steps the alpha channel.
package pixelate

import (
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/gift"
	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is wrapped by all configuration validation failures, so
// callers can detect them with errors.Is.
var ErrInvalidConfig = errors.New("invalid pixelation configuration")

// Interpolation selects the resampling kernel used for the downsampling step.
// The upsampling step back to the original size is always nearest-neighbor.
type Interpolation int

const (
	Nearest Interpolation = iota
	Bilinear
	Bicubic
	Lanczos2
	Lanczos3
)

func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	case Lanczos2:
		return "lanczos2"
	case Lanczos3:
		return "lanczos3"
	}
	return "unknown"
}

// InterpolationFromString parses a kernel name as used in flags and config
// files. Matching is case-insensitive.
func InterpolationFromString(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	case "bicubic":
		return Bicubic, nil
	case "lanczos2":
		return Lanczos2, nil
	case "lanczos3":
		return Lanczos3, nil
	}
	return Nearest, errors.Wrapf(ErrInvalidConfig, "unknown interpolation %q", s)
}

func (i Interpolation) resizeKernel() resize.InterpolationFunction {
	switch i {
	case Bilinear:
		return resize.Bilinear
	case Bicubic:
		return resize.Bicubic
	case Lanczos2:
		return resize.Lanczos2
	case Lanczos3:
		return resize.Lanczos3
	}
	return resize.NearestNeighbor
}

// PaletteMethod selects how an optional fixed palette is extracted from the
// downsampled image.
type PaletteMethod int

const (
	PaletteDominant PaletteMethod = iota
	PaletteKMeans
)

func (m PaletteMethod) String() string {
	if m == PaletteKMeans {
		return "kmeans"
	}
	return "dominant"
}

// Config describes one pixelation pass. The zero value is not valid; start
// from DefaultConfig.
type Config struct {
	// Factor is the resolution divisor. 1 skips resampling entirely.
	Factor int

	// ColorLevels is the number of discrete HSV value levels. 1 leaves
	// values untouched; 256 or more is a no-op for 8-bit inputs.
	ColorLevels int

	// MinAlpha discards faint pixels: anything with alpha strictly below
	// this threshold becomes fully transparent. In [0,1].
	MinAlpha float64

	// AlphaStep snaps surviving alpha values to the nearest multiple of
	// the step. 1.0 disables snapping. In (0,1].
	AlphaStep float64

	// Interpolation is the downsampling kernel.
	Interpolation Interpolation

	// BlurSigma, when positive, applies a gaussian soften before
	// downsampling. Reduces speckle at strong factors.
	BlurSigma float64

	// PaletteSize, when positive, snaps opaque pixels to a palette of
	// this many colors extracted from the downsampled image.
	PaletteSize int

	// PaletteMethod selects the palette extraction strategy. Only
	// consulted when PaletteSize > 0.
	PaletteMethod PaletteMethod
}

// DefaultConfig returns the configuration the original tooling shipped with:
// strong pixelation, 50 value levels, alpha stepped in quarters.
func DefaultConfig() Config {
	return Config{
		Factor:        10,
		ColorLevels:   50,
		MinAlpha:      0,
		AlphaStep:     0.25,
		Interpolation: Nearest,
	}
}

// Validate checks all configuration bounds. It is called by Pixelate before
// any pixel work begins.
func (c Config) Validate() error {
	if c.Factor < 1 {
		return errors.Wrapf(ErrInvalidConfig, "factor %d < 1", c.Factor)
	}
	if c.ColorLevels < 1 {
		return errors.Wrapf(ErrInvalidConfig, "color levels %d < 1", c.ColorLevels)
	}
	if c.MinAlpha < 0 || c.MinAlpha > 1 {
		return errors.Wrapf(ErrInvalidConfig, "min alpha %v outside [0,1]", c.MinAlpha)
	}
	if c.AlphaStep <= 0 || c.AlphaStep > 1 {
		return errors.Wrapf(ErrInvalidConfig, "alpha step %v outside (0,1]", c.AlphaStep)
	}
	if c.BlurSigma < 0 {
		return errors.Wrapf(ErrInvalidConfig, "blur sigma %v < 0", c.BlurSigma)
	}
	if c.PaletteSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "palette size %d < 0", c.PaletteSize)
	}
	return nil
}

// Pixelate runs one pixelation pass over img and returns the result as a new
// image with the same dimensions. The input is never modified.
func Pixelate(img image.Image, cfg Config) (*image.NRGBA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := toNRGBA(img)
	if w == 0 || h == 0 {
		return src, nil
	}

	if cfg.BlurSigma > 0 {
		g := gift.New(gift.GaussianBlur(float32(cfg.BlurSigma)))
		blurred := image.NewNRGBA(g.Bounds(src.Bounds()))
		g.Draw(blurred, src)
		src = blurred
	}

	down := src
	if cfg.Factor > 1 {
		dw := (w + cfg.Factor - 1) / cfg.Factor
		dh := (h + cfg.Factor - 1) / cfg.Factor
		glog.V(2).Infof("pixelate: %dx%d -> %dx%d (%s) -> %dx%d (nearest)", w, h, dw, dh, cfg.Interpolation, w, h)
		down = toNRGBA(resize.Resize(uint(dw), uint(dh), src, cfg.Interpolation.resizeKernel()))
		src = toNRGBA(resize.Resize(uint(w), uint(h), down, resize.NearestNeighbor))
	}

	var palette []colorful.Color
	if cfg.PaletteSize > 0 {
		palette = ExtractPalette(down, cfg.PaletteSize, cfg.PaletteMethod)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := src.PixOffset(src.Bounds().Min.X+x, src.Bounds().Min.Y+y)
			r, g, bl, a := src.Pix[o], src.Pix[o+1], src.Pix[o+2], src.Pix[o+3]

			an := float64(a) / 255
			if an < cfg.MinAlpha {
				src.Pix[o], src.Pix[o+1], src.Pix[o+2], src.Pix[o+3] = 0, 0, 0, 0
				continue
			}
			if cfg.AlphaStep < 1 {
				an = clamp01(math.Floor(an/cfg.AlphaStep+0.5) * cfg.AlphaStep)
			}

			col := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(bl) / 255}
			if cfg.ColorLevels > 1 {
				hue, sat, val := col.Hsv()
				n := float64(cfg.ColorLevels - 1)
				val = math.Floor(val*n+0.5) / n
				col = colorful.Hsv(hue, sat, val).Clamped()
			}
			if len(palette) > 0 {
				col = nearestColor(palette, col)
			}

			src.Pix[o] = channel8(col.R)
			src.Pix[o+1] = channel8(col.G)
			src.Pix[o+2] = channel8(col.B)
			src.Pix[o+3] = channel8(an)
		}
	}

	return src, nil
}

// toNRGBA copies img into a freshly allocated NRGBA image. Non-premultiplied
// storage keeps color intact on semi-transparent pixels across alpha edits.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func channel8(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
