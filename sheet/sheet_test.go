package sheet

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-spritesheet/pixelate"
	"badc0de.net/pkg/go-spritesheet/sstesting"
)

// twoStripTree builds a tree with known natural sizes:
// strip 0 "walk": 4x6 and 2x3 content; strip 1 "run": 6x2 content.
func twoStripTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	walk := sstesting.StripDir(t, root, 0, "walk")
	sstesting.WriteFrame(t, walk, 1, sstesting.SolidFrame(8, 8, image.Rect(1, 1, 5, 7), frameColor))
	sstesting.WriteFrame(t, walk, 2, sstesting.SolidFrame(8, 8, image.Rect(3, 2, 5, 5), frameColor))
	run := sstesting.StripDir(t, root, 1, "run")
	sstesting.WriteFrame(t, run, 1, sstesting.SolidFrame(8, 8, image.Rect(0, 3, 6, 5), frameColor))
	return root
}

func bare(consistency Consistency, align Align) Options {
	return Options{Consistency: consistency, Align: align}
}

func TestAssembleIndividual(t *testing.T) {
	sh, err := Assemble(twoStripTree(t), bare(Individual, TopLeft))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	// Cells keep their own widths; heights are uniform per row.
	sstesting.AssertEqualRect(t, "walk cell 1", sh.Rows[0].Cells[0].Bounds, image.Rect(0, 0, 4, 6))
	sstesting.AssertEqualRect(t, "walk cell 2", sh.Rows[0].Cells[1].Bounds, image.Rect(4, 0, 6, 6))
	sstesting.AssertEqualRect(t, "run cell 1", sh.Rows[1].Cells[0].Bounds, image.Rect(0, 6, 6, 8))

	sstesting.AssertEqualRect(t, "sheet canvas", sh.Image.Bounds(), image.Rect(0, 0, 6, 8))
}

func TestAssembleRowConsistent(t *testing.T) {
	sh, err := Assemble(twoStripTree(t), bare(Row, TopLeft))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	// All cells within a row share the row maxima; rows differ.
	sstesting.AssertEqualRect(t, "walk cell 1", sh.Rows[0].Cells[0].Bounds, image.Rect(0, 0, 4, 6))
	sstesting.AssertEqualRect(t, "walk cell 2", sh.Rows[0].Cells[1].Bounds, image.Rect(4, 0, 8, 6))
	sstesting.AssertEqualRect(t, "run cell 1", sh.Rows[1].Cells[0].Bounds, image.Rect(0, 6, 6, 8))
}

func TestAssembleAllConsistent(t *testing.T) {
	sh, err := Assemble(twoStripTree(t), bare(All, TopLeft))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	// Every cell in the sheet is 6x6: the global maxima.
	for ri, row := range sh.Rows {
		for ci, cell := range row.Cells {
			if cell.Bounds.Dx() != 6 || cell.Bounds.Dy() != 6 {
				t.Errorf("row %d cell %d = %v; want 6x6", ri, ci, cell.Bounds)
			}
		}
	}
	sstesting.AssertEqualRect(t, "sheet canvas", sh.Image.Bounds(), image.Rect(0, 0, 12, 12))
}

func TestAssembleAlignment(t *testing.T) {
	for _, tt := range []struct {
		align   Align
		content image.Rectangle
	}{
		// 2x3 content in the second 6x6 cell of an All-consistent
		// sheet; the cell starts at x=6.
		{TopLeft, image.Rect(6, 0, 8, 3)},
		{TopCenter, image.Rect(8, 0, 10, 3)},
		{TopRight, image.Rect(10, 0, 12, 3)},
		{MiddleLeft, image.Rect(6, 1, 8, 4)},
		{MiddleCenter, image.Rect(8, 1, 10, 4)},
		{MiddleRight, image.Rect(10, 1, 12, 4)},
		{BottomLeft, image.Rect(6, 3, 8, 6)},
		{BottomCenter, image.Rect(8, 3, 10, 6)},
		{BottomRight, image.Rect(10, 3, 12, 6)},
	} {
		t.Run(tt.align.String(), func(t *testing.T) {
			sh, err := Assemble(twoStripTree(t), bare(All, tt.align))
			if err != nil {
				t.Fatalf("Assemble failed: %v", err)
			}
			if got := sh.Rows[0].Cells[1].Content; got != tt.content {
				t.Errorf("content rect = %v; want %v", got, tt.content)
			}
		})
	}
}

func TestAssembleOddPaddingLandsBottomRight(t *testing.T) {
	// 2x3 content centered in a 5x6 cell: the leftover odd pixel of
	// horizontal padding goes to the right.
	ox, oy := MiddleCenter.offset(5, 6, 2, 3)
	sstesting.AssertEqualInt(t, "x offset", ox, 1)
	sstesting.AssertEqualInt(t, "y offset", oy, 1)
}

func TestAssembleGapTolerance(t *testing.T) {
	root := t.TempDir()
	walk := sstesting.StripDir(t, root, 0, "walk")
	sstesting.WriteFrame(t, walk, 1, sstesting.SolidFrame(4, 4, image.Rect(0, 0, 4, 4), frameColor))
	if err := os.WriteFile(filepath.Join(walk, "2.png"), []byte("truncated render output"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sstesting.WriteFrame(t, walk, 3, sstesting.SolidFrame(4, 4, image.Rect(0, 0, 4, 4), frameColor))

	sh, err := Assemble(root, bare(Individual, TopLeft))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	sstesting.AssertEqualInt(t, "cell count", len(sh.Rows[0].Cells), 2)
	sstesting.AssertEqualInt(t, "cell frames", sh.Rows[0].Cells[0].Frame*10+sh.Rows[0].Cells[1].Frame, 13)
	sstesting.AssertEqualInt(t, "skipped count", sh.Report.SkippedCount(), 1)
	sstesting.AssertEqualInt(t, "skipped frame", sh.Report.Skipped[0].Frame, 2)
	sstesting.AssertEqualString(t, "skipped label", sh.Report.Skipped[0].Label, "walk")
}

func TestAssembleEmptyRoot(t *testing.T) {
	sh, err := Assemble(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if !sh.Empty() {
		t.Errorf("Empty() = false; want true")
	}
	sstesting.AssertEqualRect(t, "canvas", sh.Image.Bounds(), image.Rect(0, 0, 0, 0))
}

func TestAssembleMissingRoot(t *testing.T) {
	_, err := Assemble(filepath.Join(t.TempDir(), "nope"), DefaultOptions())
	if !errors.Is(err, ErrInvalidRoot) {
		t.Errorf("Assemble on missing root = %v; want ErrInvalidRoot", err)
	}
}

func TestAssembleInvalidOptions(t *testing.T) {
	if _, err := Assemble(t.TempDir(), Options{Margin: -1}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("negative margin = %v; want ErrInvalidOptions", err)
	}
	bad := pixelate.Config{Factor: 0, ColorLevels: 50, AlphaStep: 0.25}
	if _, err := Assemble(t.TempDir(), Options{Pixelation: &bad}); !errors.Is(err, pixelate.ErrInvalidConfig) {
		t.Errorf("bad pixelation config = %v; want ErrInvalidConfig", err)
	}
}

func TestAssembleSingleSprite(t *testing.T) {
	root := t.TempDir()
	only := sstesting.StripDir(t, root, 0, "only")
	sstesting.WriteFrame(t, only, 1, sstesting.SolidFrame(10, 10, image.Rect(2, 3, 7, 9), frameColor))

	// A lone sprite sets every maximum itself, so all three sizing modes
	// must collapse to the same sheet.
	for _, cons := range []Consistency{Individual, Row, All} {
		t.Run(cons.String(), func(t *testing.T) {
			sh, err := Assemble(root, bare(cons, BottomCenter))
			if err != nil {
				t.Fatalf("Assemble failed: %v", err)
			}

			// With no margin and no labels the sheet is exactly the
			// trimmed content.
			sstesting.AssertEqualRect(t, "canvas", sh.Image.Bounds(), image.Rect(0, 0, 5, 6))
			for y := 0; y < 6; y++ {
				for x := 0; x < 5; x++ {
					if got := sh.Image.NRGBAAt(x, y); got != frameColor {
						t.Fatalf("pixel (%d,%d) = %v; want %v", x, y, got, frameColor)
					}
				}
			}
		})
	}
}

func TestAssembleIdempotent(t *testing.T) {
	root := twoStripTree(t)
	opts := Options{Consistency: Row, Align: BottomCenter, Margin: 3, FontSize: 12}

	var a, b bytes.Buffer
	sh1, err := Assemble(root, opts)
	if err != nil {
		t.Fatalf("first Assemble failed: %v", err)
	}
	if err := sh1.EncodePNG(&a); err != nil {
		t.Fatalf("encoding first sheet: %v", err)
	}
	sh2, err := Assemble(root, opts)
	if err != nil {
		t.Fatalf("second Assemble failed: %v", err)
	}
	if err := sh2.EncodePNG(&b); err != nil {
		t.Fatalf("encoding second sheet: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("two runs over the same tree produced different sheets")
	}
}

func TestAssembleLabels(t *testing.T) {
	sh, err := Assemble(twoStripTree(t), Options{Consistency: Individual, Align: BottomCenter, Margin: 4, FontSize: 16})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	lb := sh.Rows[0].LabelBounds
	if lb.Empty() {
		t.Fatalf("label bounds empty with FontSize > 0")
	}
	sstesting.AssertEqualInt(t, "label left margin", lb.Min.X, 4)
	sstesting.AssertEqualInt(t, "label top margin", lb.Min.Y, 4)

	// Some ink must have landed inside the label box.
	var inked bool
	for y := lb.Min.Y; y < lb.Max.Y && !inked; y++ {
		for x := lb.Min.X; x < lb.Max.X; x++ {
			if sh.Image.NRGBAAt(x, y).A > 0 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Errorf("no label ink inside %v", lb)
	}

	// Rows of cells start below the margin-label-margin band.
	if top := sh.Rows[0].Cells[0].Bounds.Min.Y; top < lb.Max.Y {
		t.Errorf("first cell top %d overlaps label box %v", top, lb)
	}
}

func TestAssembleEmptyStripRow(t *testing.T) {
	root := t.TempDir()
	sstesting.StripDir(t, root, 0, "interrupted")
	run := sstesting.StripDir(t, root, 1, "run")
	sstesting.WriteFrame(t, run, 1, sstesting.SolidFrame(4, 4, image.Rect(0, 0, 4, 4), frameColor))

	sh, err := Assemble(root, Options{Consistency: Individual, Align: TopLeft, Margin: 2, FontSize: 0})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	sstesting.AssertEqualInt(t, "row count", len(sh.Rows), 2)
	sstesting.AssertEqualInt(t, "empty row cells", len(sh.Rows[0].Cells), 0)
	sstesting.AssertEqualInt(t, "second row cells", len(sh.Rows[1].Cells), 1)
}

func TestTOCMatchesGeometry(t *testing.T) {
	sh, err := Assemble(twoStripTree(t), Options{Consistency: All, Align: BottomCenter, Margin: 2})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	toc := sh.TOC()
	sstesting.AssertEqualInt(t, "toc width", toc.Width, sh.Image.Bounds().Dx())
	sstesting.AssertEqualInt(t, "toc height", toc.Height, sh.Image.Bounds().Dy())
	for ri, row := range sh.Rows {
		for ci, cell := range row.Cells {
			ts := toc.Rows[ri].Sprites[ci]
			got := image.Rect(ts.X+ts.OffsetX, ts.Y+ts.OffsetY, ts.X+ts.OffsetX+ts.TrimW, ts.Y+ts.OffsetY+ts.TrimH)
			if got != cell.Content {
				t.Errorf("row %d sprite %d content via TOC = %v; want %v", ri, ci, got, cell.Content)
			}
		}
	}
}
