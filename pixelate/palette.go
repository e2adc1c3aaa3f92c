package pixelate

// This file contains palette extraction for the optional palette-snap pass.
// Hosts that want one palette shared across a whole strip set can call
// ExtractPalette themselves and rerun Pixelate per frame with it baked into
// a paletted postprocess of their own.

import (
	"image"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// kmeans cost grows with the sample count; cap it so large frames stay cheap.
const maxKMeansSamples = 12000

// ExtractPalette derives a palette of up to size colors from img using the
// given method. Transparent pixels are never sampled. The result may be
// shorter than size when the image has fewer distinct colors, and nil when
// nothing opaque was found.
func ExtractPalette(img image.Image, size int, method PaletteMethod) []colorful.Color {
	if size <= 0 {
		return nil
	}
	var pal []colorful.Color
	switch method {
	case PaletteKMeans:
		pal = kmeansPalette(img, size)
		if len(pal) == 0 {
			glog.V(1).Infof("kmeans palette came back empty, falling back to dominant colors")
			pal = dominantPalette(img, size)
		}
	default:
		pal = dominantPalette(img, size)
	}
	return pal
}

func dominantPalette(img image.Image, size int) []colorful.Color {
	cands := dominantcolor.FindWeight(img, size*4)
	sort.Slice(cands, func(i, j int) bool { return cands[i].Weight > cands[j].Weight })

	out := make([]colorful.Color, 0, size)
	for _, c := range cands {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		out = append(out, col.Clamped())
		if len(out) == size {
			break
		}
	}
	return out
}

func kmeansPalette(img image.Image, size int) []colorful.Color {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}

	step := 1
	if n := b.Dx() * b.Dy(); n > maxKMeansSamples {
		step = int(math.Sqrt(float64(n)/float64(maxKMeansSamples))) + 1
	}

	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535,
				float64(g) / 65535,
				float64(bl) / 65535,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}
	k := size
	if k > len(dataset) {
		k = len(dataset)
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		glog.Errorf("kmeans partition failed: %v", err)
		return nil
	}

	sort.Slice(cc, func(i, j int) bool {
		return len(cc[i].Observations) > len(cc[j].Observations)
	})
	out := make([]colorful.Color, 0, len(cc))
	for _, c := range cc {
		center := c.Center.Coordinates()
		if len(center) != 3 {
			continue
		}
		out = append(out, colorful.Color{R: center[0], G: center[1], B: center[2]}.Clamped())
	}
	return out
}

// nearestColor returns the palette entry closest to col in Lab space.
func nearestColor(palette []colorful.Color, col colorful.Color) colorful.Color {
	best := palette[0]
	bestD := math.MaxFloat64
	for _, p := range palette {
		if d := col.DistanceLab(p); d < bestD {
			bestD = d
			best = p
		}
	}
	return best
}
