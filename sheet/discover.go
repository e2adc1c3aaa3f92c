package sheet

// This file contains discovery of the on-disk temp tree an external renderer
// deposits frames into: one subfolder per animation strip, named
// "<index>_<label>", holding frame files named "<n>.<ext>".

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrInvalidRoot is wrapped by Discover when the root folder does not exist
// or is not a directory. It is fatal; nothing partial is returned.
var ErrInvalidRoot = errors.New("invalid root folder")

// Frame is one numbered frame file within a strip. Frames are kept as a
// sparse, sorted set so a tree left behind by an interrupted render (with
// holes in the numbering) discovers cleanly.
type Frame struct {
	Number int
	Path   string
}

// Strip is one ordered group of frames sharing a label. It corresponds to
// one row of the assembled sheet.
type Strip struct {
	Index  int
	Label  string
	Frames []Frame
}

// Discover scans root for strip subfolders and their frame files. Strips come
// back sorted ascending by index, frames ascending by number. Entries not
// matching the naming scheme are ignored. A strip folder with no matching
// files still yields a (frameless) Strip. An empty root yields an empty,
// non-nil slice.
func Discover(root string) ([]Strip, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoot, "stat %s: %v", root, err)
	}
	if !fi.IsDir() {
		return nil, errors.Wrapf(ErrInvalidRoot, "%s is not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoot, "read %s: %v", root, err)
	}

	strips := []Strip{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		idx, label, ok := parseStripName(e.Name())
		if !ok {
			glog.V(1).Infof("ignoring folder %q: not <index>_<label>", e.Name())
			continue
		}
		frames, err := discoverFrames(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		strips = append(strips, Strip{Index: idx, Label: label, Frames: frames})
	}

	sort.SliceStable(strips, func(i, j int) bool { return strips[i].Index < strips[j].Index })
	glog.Infof("discovered %d strip(s) under %s", len(strips), root)
	return strips, nil
}

func parseStripName(name string) (idx int, label string, ok bool) {
	i := strings.Index(name, "_")
	if i < 0 {
		return 0, "", false
	}
	idx, err := strconv.Atoi(name[:i])
	if err != nil || idx < 0 {
		return 0, "", false
	}
	return idx, name[i+1:], true
}

func discoverFrames(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoot, "read %s: %v", dir, err)
	}
	frames := []Frame{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := parseFrameName(e.Name())
		if !ok {
			glog.V(1).Infof("ignoring file %q: not <n>.<ext>", e.Name())
			continue
		}
		frames = append(frames, Frame{Number: n, Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Number < frames[j].Number })
	return frames, nil
}

func parseFrameName(name string) (int, bool) {
	i := strings.Index(name, ".")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:i])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
