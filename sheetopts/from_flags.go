// Package sheetopts is a helper constructing assembly and pixelation
// configuration from command line flags shared by this module's commands.
package sheetopts

import (
	"flag"

	"badc0de.net/pkg/go-spritesheet/pixelate"
	"badc0de.net/pkg/go-spritesheet/sheet"
)

var (
	consistency   string
	align         string
	margin        int
	fontSize      int
	doPixelate    bool
	factor        int
	colorLevels   int
	minAlpha      float64
	alphaStep     float64
	interpolation string
	blurSigma     float64
	paletteSize   int
	paletteMethod string
)

// SetupAssembleFlags registers --consistency, --align, --margin and
// --font_size. The defaults match what the original tooling assembled with.
func SetupAssembleFlags() {
	flag.StringVar(&consistency, "consistency", "individual", "sizing policy: individual, row or all")
	flag.StringVar(&align, "align", "bottom-center", "where a sprite sits within a larger cell, e.g. bottom-center")
	flag.IntVar(&margin, "margin", 15, "pixel gap around cells and rows")
	flag.IntVar(&fontSize, "font_size", 24, "row label height in pixels; 0 disables labels")
}

// SetupPixelateFlags registers the --pixelate_* knobs plus the --pixelate
// switch itself.
func SetupPixelateFlags() {
	flag.BoolVar(&doPixelate, "pixelate", false, "pixelate every frame before combining")
	SetupPixelateConfigFlags()
}

// SetupPixelateConfigFlags registers the --pixelate_* knobs without the
// on/off switch, for commands where pixelation is the whole point.
func SetupPixelateConfigFlags() {
	flag.IntVar(&factor, "pixelate_factor", 10, "resolution divisor; 1 leaves resolution alone")
	flag.IntVar(&colorLevels, "pixelate_color_levels", 50, "number of discrete HSV value levels")
	flag.Float64Var(&minAlpha, "pixelate_min_alpha", 0, "pixels with alpha below this become fully transparent")
	flag.Float64Var(&alphaStep, "pixelate_alpha_step", 0.25, "snap alpha to multiples of this; 1 disables snapping")
	flag.StringVar(&interpolation, "pixelate_interpolation", "nearest", "downsampling kernel: nearest, bilinear, bicubic, lanczos2 or lanczos3")
	flag.Float64Var(&blurSigma, "pixelate_blur_sigma", 0, "gaussian soften before downsampling; 0 disables")
	flag.IntVar(&paletteSize, "pixelate_palette", 0, "snap colors to a palette of this many entries; 0 disables")
	flag.StringVar(&paletteMethod, "pixelate_palette_method", "dominant", "palette extraction: dominant or kmeans")
}

// PixelateConfigFromFlags builds a pixelation configuration from the flag
// values. The flags need to be registered and parsed by the time this
// function is invoked.
func PixelateConfigFromFlags() (pixelate.Config, error) {
	cfg := pixelate.Config{
		Factor:      factor,
		ColorLevels: colorLevels,
		MinAlpha:    minAlpha,
		AlphaStep:   alphaStep,
		BlurSigma:   blurSigma,
		PaletteSize: paletteSize,
	}
	var err error
	if cfg.Interpolation, err = pixelate.InterpolationFromString(interpolation); err != nil {
		return cfg, err
	}
	if paletteMethod == "kmeans" {
		cfg.PaletteMethod = pixelate.PaletteKMeans
	}
	return cfg, cfg.Validate()
}

// AssembleOptionsFromFlags builds assembly options from the flag values,
// including the pixelation configuration when --pixelate was passed.
func AssembleOptionsFromFlags() (sheet.Options, error) {
	opts := sheet.Options{
		Margin:   margin,
		FontSize: fontSize,
	}
	var err error
	if opts.Consistency, err = sheet.ConsistencyFromString(consistency); err != nil {
		return opts, err
	}
	if opts.Align, err = sheet.AlignFromString(align); err != nil {
		return opts, err
	}
	if doPixelate {
		cfg, err := PixelateConfigFromFlags()
		if err != nil {
			return opts, err
		}
		opts.Pixelation = &cfg
	}
	return opts, nil
}
