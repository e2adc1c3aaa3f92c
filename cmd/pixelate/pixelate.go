// Binary pixelate runs the pixelation pass over standalone image files,
// outside of any sheet assembly. Arguments are "input" or "input:output"
// pairs; without an explicit output the result lands next to the input with
// a "_pixelated.png" suffix.
package main

import (
	"context"
	"flag"
	"image"
	"image/png"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"badc0de.net/pkg/flagutil/v1"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-spritesheet/pixelate"
	"badc0de.net/pkg/go-spritesheet/sheetopts"
)

var (
	jobs = flag.Int("jobs", 4, "number of files processed concurrently")
)

// splitArg splits "input:output", defaulting the output path.
func splitArg(arg string) (string, string) {
	if i := strings.LastIndex(arg, ":"); i > 0 {
		return arg[:i], arg[i+1:]
	}
	out := arg
	if i := strings.LastIndex(out, "."); i > 0 {
		out = out[:i]
	}
	return arg, out + "_pixelated.png"
}

func processFile(arg string, cfg pixelate.Config) error {
	in, out := splitArg(arg)

	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(err, "opening input")
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "decoding %s", in)
	}

	result, err := pixelate.Pixelate(img, cfg)
	if err != nil {
		return err
	}

	o, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if err := png.Encode(o, result); err != nil {
		o.Close()
		return errors.Wrapf(err, "encoding %s", out)
	}
	if err := o.Close(); err != nil {
		return err
	}
	glog.Infof("%s -> %s", in, out)
	return nil
}

func main() {
	sheetopts.SetupPixelateConfigFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	cfg, err := sheetopts.PixelateConfigFromFlags()
	if err != nil {
		glog.Exitf("bad flags: %v", err)
	}
	if flag.NArg() == 0 {
		glog.Exit("no input files; pass input or input:output arguments")
	}

	// Each file is an independent image; the engine itself stays
	// synchronous, concurrency is only across disjoint files.
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(*jobs)
	for _, arg := range flag.Args() {
		arg := arg
		g.Go(func() error {
			return processFile(arg, cfg)
		})
	}
	if err := g.Wait(); err != nil {
		glog.Exit(err)
	}
}
