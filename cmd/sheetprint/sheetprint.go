// Binary sheetprint assembles a frame tree into a sprite sheet PNG, and can
// preview the result right in the terminal.
package main

import (
	"flag"
	"os"

	"badc0de.net/pkg/flagutil/v1"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-spritesheet/sheet"
	"badc0de.net/pkg/go-spritesheet/sheetopts"
)

var (
	root    = flag.String("root", "", "folder tree of rendered frames to combine")
	outPath = flag.String("out", "sheet.png", "path to write the assembled sheet PNG to")
	tocPath = flag.String("toc", "", "path to write the sheet geometry JSON to; empty disables")

	doPreview = flag.Bool("preview", false, "print the assembled sheet to the terminal")
	col       = flag.Bool("col", true, "whether to print in color")
	col256    = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm     = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm   = flag.Bool("rasterm", false, "whether to print with the rasterm library")
	blanks    = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize  = flag.Bool("downsize", true, "whether to downscale the preview to the terminal size")
)

func main() {
	sheetopts.SetupAssembleFlags()
	sheetopts.SetupPixelateFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if *root == "" {
		glog.Exit("--root is required")
	}

	opts, err := sheetopts.AssembleOptionsFromFlags()
	if err != nil {
		glog.Exitf("bad flags: %v", err)
	}

	sh, err := sheet.Assemble(*root, opts)
	if err != nil {
		glog.Exitf("assembling %s: %v", *root, err)
	}
	for _, s := range sh.Report.Skipped {
		glog.Warningf("skipped strip %d (%q) frame %d: %v", s.StripIndex, s.Label, s.Frame, s.Err)
	}
	if sh.Empty() {
		glog.Warningf("nothing to combine under %s", *root)
	}

	if err := sh.WritePNG(*outPath); err != nil {
		glog.Exitf("writing %s: %v", *outPath, err)
	}
	glog.Infof("wrote %dx%d sheet to %s (%d frame(s) skipped)", sh.Image.Bounds().Dx(), sh.Image.Bounds().Dy(), *outPath, sh.Report.SkippedCount())

	if *tocPath != "" {
		f, err := os.Create(*tocPath)
		if err != nil {
			glog.Exitf("creating %s: %v", *tocPath, err)
		}
		if err := sh.EncodeTOC(f); err != nil {
			glog.Exitf("writing %s: %v", *tocPath, err)
		}
		f.Close()
	}

	if *doPreview {
		out(sh.Image)
	}
}
