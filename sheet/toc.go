package sheet

// This file contains the table-of-contents sidecar. A sheet assembled under
// the Individual policy is not sliceable by a fixed stride, so downstream
// consumers need the per-sprite offsets recorded here.

import (
	"encoding/json"
	"io"
)

// TOCSprite is one cell's geometry: the cell box itself plus where the
// trimmed content sits within it.
type TOCSprite struct {
	Frame   int `json:"frame"`
	X       int `json:"x"`
	Y       int `json:"y"`
	W       int `json:"w"`
	H       int `json:"h"`
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
	TrimW   int `json:"trim_w"`
	TrimH   int `json:"trim_h"`
}

// TOCRow is one strip's entry: its label and its sprites in frame order.
type TOCRow struct {
	Index   int         `json:"index"`
	Label   string      `json:"label"`
	Sprites []TOCSprite `json:"sprites"`
}

// TOC describes the geometry of an assembled sheet.
type TOC struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []TOCRow `json:"rows"`
}

// TOC returns the sheet's geometry in a form suitable for serialization.
func (s *Sheet) TOC() *TOC {
	t := &TOC{
		Width:  s.Image.Bounds().Dx(),
		Height: s.Image.Bounds().Dy(),
	}
	for _, row := range s.Rows {
		tr := TOCRow{Index: row.StripIndex, Label: row.Label}
		for _, c := range row.Cells {
			tr.Sprites = append(tr.Sprites, TOCSprite{
				Frame:   c.Frame,
				X:       c.Bounds.Min.X,
				Y:       c.Bounds.Min.Y,
				W:       c.Bounds.Dx(),
				H:       c.Bounds.Dy(),
				OffsetX: c.Content.Min.X - c.Bounds.Min.X,
				OffsetY: c.Content.Min.Y - c.Bounds.Min.Y,
				TrimW:   c.Content.Dx(),
				TrimH:   c.Content.Dy(),
			})
		}
		t.Rows = append(t.Rows, tr)
	}
	return t
}

// EncodeTOC writes the sheet's geometry as indented JSON.
func (s *Sheet) EncodeTOC(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.TOC())
}
