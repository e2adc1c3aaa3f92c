// Package sheet assembles a folder tree of rendered animation frames into a
// single labeled sprite sheet.
//
// The expected tree is produced by an external renderer: one subfolder per
// animation strip, named "<index>_<label>", each holding frame files named
// "<n>.<ext>". The tree is read-only as far as this package is concerned, and
// gaps in frame numbering (an interrupted render, or frames skipped on
// purpose) are tolerated: missing frames are simply absent from their row,
// and frames that fail to decode are skipped the same way and reported.
package sheet

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/math/fixed"

	"badc0de.net/pkg/go-spritesheet/pixelate"
)

// ErrInvalidOptions is wrapped by option validation failures in Assemble.
var ErrInvalidOptions = errors.New("invalid assembly options")

// Consistency is the sizing policy: which sprites must share cell dimensions.
type Consistency int

const (
	// Individual keeps each sprite's own width; only row height is shared.
	Individual Consistency = iota
	// Row shares both cell dimensions within a row.
	Row
	// All shares one cell size across the whole sheet, so the result is
	// sliceable by a fixed stride.
	All
)

func (c Consistency) String() string {
	switch c {
	case Individual:
		return "individual"
	case Row:
		return "row"
	case All:
		return "all"
	}
	return "unknown"
}

// ConsistencyFromString parses a sizing policy name as used in flags.
func ConsistencyFromString(s string) (Consistency, error) {
	switch strings.ToLower(s) {
	case "individual":
		return Individual, nil
	case "row":
		return Row, nil
	case "all":
		return All, nil
	}
	return Individual, errors.Wrapf(ErrInvalidOptions, "unknown consistency %q", s)
}

// Align is where a sprite's trimmed content sits within a larger cell.
type Align int

const (
	TopLeft Align = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

var alignNames = map[Align]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	MiddleLeft:   "middle-left",
	MiddleCenter: "middle-center",
	MiddleRight:  "middle-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

func (a Align) String() string {
	if s, ok := alignNames[a]; ok {
		return s
	}
	return "unknown"
}

// AlignFromString parses an alignment name as used in flags.
func AlignFromString(s string) (Align, error) {
	for a, name := range alignNames {
		if name == strings.ToLower(s) {
			return a, nil
		}
	}
	return BottomCenter, errors.Wrapf(ErrInvalidOptions, "unknown alignment %q", s)
}

// offset positions content of size (cw,ch) inside a cell of size (w,h).
// Centering truncates, so an odd leftover pixel of padding lands on the
// bottom/right side.
func (a Align) offset(w, h, cw, ch int) (int, int) {
	var x, y int
	switch a {
	case TopCenter, MiddleCenter, BottomCenter:
		x = (w - cw) / 2
	case TopRight, MiddleRight, BottomRight:
		x = w - cw
	}
	switch a {
	case MiddleLeft, MiddleCenter, MiddleRight:
		y = (h - ch) / 2
	case BottomLeft, BottomCenter, BottomRight:
		y = h - ch
	}
	return x, y
}

// Options configures one assembly run.
type Options struct {
	Consistency Consistency
	Align       Align

	// Margin is the uniform pixel gap around cells and rows.
	Margin int

	// FontSize is the label height in pixels; 0 disables labels.
	FontSize int

	// Pixelation, when non-nil, is applied to every frame before
	// trimming.
	Pixelation *pixelate.Config
}

// DefaultOptions mirrors the defaults the original tooling assembled with.
func DefaultOptions() Options {
	return Options{
		Consistency: Individual,
		Align:       BottomCenter,
		Margin:      15,
		FontSize:    24,
	}
}

func (o Options) validate() error {
	if o.Margin < 0 {
		return errors.Wrapf(ErrInvalidOptions, "margin %d < 0", o.Margin)
	}
	if o.FontSize < 0 {
		return errors.Wrapf(ErrInvalidOptions, "font size %d < 0", o.FontSize)
	}
	if o.Consistency.String() == "unknown" {
		return errors.Wrapf(ErrInvalidOptions, "consistency %d", o.Consistency)
	}
	if o.Align.String() == "unknown" {
		return errors.Wrapf(ErrInvalidOptions, "alignment %d", o.Align)
	}
	if o.Pixelation != nil {
		if err := o.Pixelation.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SkippedFrame records one frame file that matched the naming scheme but
// could not be used. The sheet it accompanies is still valid; the frame is
// simply absent from its row.
type SkippedFrame struct {
	StripIndex int
	Label      string
	Frame      int
	Err        error
}

// Report accompanies an assembled sheet and names exactly which frames were
// skipped, so a resumable caller knows what still needs re-rendering.
type Report struct {
	Skipped []SkippedFrame
}

// SkippedCount returns the number of skipped frames.
func (r *Report) SkippedCount() int { return len(r.Skipped) }

// Cell is one sprite's placement in the assembled sheet.
type Cell struct {
	// Frame is the frame number within the strip.
	Frame int
	// Bounds is the full cell box in sheet coordinates.
	Bounds image.Rectangle
	// Content is where the trimmed sprite content actually sits within
	// Bounds, per the configured alignment.
	Content image.Rectangle
}

// SheetRow is one assembled strip: its label and its cells in frame order.
type SheetRow struct {
	StripIndex int
	Label      string
	// LabelBounds is the label ink box in sheet coordinates; zero when
	// labels are disabled.
	LabelBounds image.Rectangle
	Cells       []Cell
}

// Sheet is the result of one assembly run: the composited image, the
// geometry of everything on it, and the skipped-frame report.
type Sheet struct {
	Image  *image.NRGBA
	Rows   []SheetRow
	Report Report
}

// Empty reports whether nothing was discovered to combine.
func (s *Sheet) Empty() bool { return len(s.Rows) == 0 }

// EncodePNG writes the composited sheet as PNG.
func (s *Sheet) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.Image)
}

// WritePNG writes the composited sheet as PNG to path.
func (s *Sheet) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating sheet file")
	}
	if err := s.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// rowLayout is the transient per-row state between the measuring pass and
// compositing.
type rowLayout struct {
	strip    Strip
	sprites  []*sprite
	maxW     int
	maxH     int
	labelDot fixed.Point26_6
}

// Assemble reads the tree under root and composites one labeled sprite
// sheet from it. Two runs over the same tree with the same options produce
// identical sheets. A root with no strips yields an empty sheet, not an
// error.
func Assemble(root string, opts Options) (*Sheet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	strips, err := Discover(root)
	if err != nil {
		return nil, err
	}

	out := &Sheet{}
	if len(strips) == 0 {
		out.Image = image.NewNRGBA(image.Rect(0, 0, 0, 0))
		return out, nil
	}

	// Load and prepare every sprite first: the All policy needs the
	// global maxima before any row can be placed.
	rows := make([]*rowLayout, 0, len(strips))
	var globalW, globalH int
	for _, strip := range strips {
		row := &rowLayout{strip: strip}
		for _, frame := range strip.Frames {
			sp, err := loadSprite(frame, opts.Pixelation)
			if err != nil {
				glog.Errorf("skipping strip %d (%q) frame %d: %v", strip.Index, strip.Label, frame.Number, err)
				out.Report.Skipped = append(out.Report.Skipped, SkippedFrame{
					StripIndex: strip.Index,
					Label:      strip.Label,
					Frame:      frame.Number,
					Err:        err,
				})
				continue
			}
			row.sprites = append(row.sprites, sp)
			if w := sp.width(); w > row.maxW {
				row.maxW = w
			}
			if h := sp.height(); h > row.maxH {
				row.maxH = h
			}
		}
		if row.maxW > globalW {
			globalW = row.maxW
		}
		if row.maxH > globalH {
			globalH = row.maxH
		}
		rows = append(rows, row)
	}

	var face *labelFace
	if opts.FontSize > 0 {
		face, err = newLabelFace(opts.FontSize)
		if err != nil {
			return nil, err
		}
		defer face.Close()
	}

	// Place rows top to bottom. The arithmetic deliberately matches the
	// layout the external tooling established: a margin-label-margin band
	// above each row of cells, a margin between and around cells, and a
	// single closing margin at the bottom.
	totalW, totalH := 0, 0
	for _, row := range rows {
		glog.V(1).Infof("laying out strip %d (%q): %d sprite(s)", row.strip.Index, row.strip.Label, len(row.sprites))

		sheetRow := SheetRow{StripIndex: row.strip.Index, Label: row.strip.Label}

		var labelW, labelH int
		if face != nil {
			bounds := face.measure(row.strip.Label)
			labelW = (bounds.Max.X - bounds.Min.X).Ceil()
			labelH = (bounds.Max.Y - bounds.Min.Y).Ceil()
			row.labelDot = fixed.Point26_6{
				X: fixed.I(opts.Margin) - bounds.Min.X,
				Y: fixed.I(totalH+opts.Margin) - bounds.Min.Y,
			}
			sheetRow.LabelBounds = image.Rect(opts.Margin, totalH+opts.Margin, opts.Margin+labelW, totalH+opts.Margin+labelH)
		}
		if totalW < opts.Margin+labelW+opts.Margin {
			totalW = opts.Margin + labelW + opts.Margin
		}
		totalH += opts.Margin + labelH + opts.Margin

		rowW := opts.Margin
		rowH := 0
		for _, sp := range row.sprites {
			cellW, cellH := sp.width(), row.maxH
			switch opts.Consistency {
			case Row:
				cellW, cellH = row.maxW, row.maxH
			case All:
				cellW, cellH = globalW, globalH
			}
			offX, offY := opts.Align.offset(cellW, cellH, sp.width(), sp.height())

			cell := Cell{
				Frame:  sp.frame,
				Bounds: image.Rect(rowW, totalH, rowW+cellW, totalH+cellH),
				Content: image.Rect(rowW+offX, totalH+offY,
					rowW+offX+sp.width(), totalH+offY+sp.height()),
			}
			sheetRow.Cells = append(sheetRow.Cells, cell)

			rowW += cellW + opts.Margin
			if cellH > rowH {
				rowH = cellH
			}
		}
		if len(row.sprites) > 0 && totalW < rowW {
			totalW = rowW
		}
		totalH += rowH

		out.Rows = append(out.Rows, sheetRow)
	}
	totalH += opts.Margin

	glog.Infof("compositing %dx%d sheet, %d row(s), %d skipped frame(s)", totalW, totalH, len(out.Rows), out.Report.SkippedCount())
	out.Image = image.NewNRGBA(image.Rect(0, 0, totalW, totalH))

	for i, row := range rows {
		if face != nil {
			face.draw(out.Image, row.strip.Label, row.labelDot)
		}
		for j, sp := range row.sprites {
			content := out.Rows[i].Cells[j].Content
			draw.Draw(out.Image, content, sp.img, sp.img.Bounds().Min, draw.Over)
		}
	}

	return out, nil
}
