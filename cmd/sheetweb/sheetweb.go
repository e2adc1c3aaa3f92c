// Binary sheetweb serves a read-only web preview of a frame tree: the
// assembled sheet, its geometry JSON, per-strip animated GIFs and individual
// frames.
package main

import (
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"

	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/go-spritesheet/sheet"
	"badc0de.net/pkg/go-spritesheet/sheetopts"
	"badc0de.net/pkg/go-spritesheet/web"
)

var (
	listenAddress      = flag.String("listen_address", ":8080", "http listen address for sheetweb")
	debugListenAddress = flag.String("debug_listen_address", "", "if nonempty, http listen address for debug pages such as /debug/requests")
	root               = flag.String("root", "", "folder tree of rendered frames to serve")
)

func main() {
	sheetopts.SetupAssembleFlags()
	sheetopts.SetupPixelateFlags()
	flagutil.Parse()

	if *root == "" {
		glog.Exit("--root is required")
	}
	opts, err := sheetopts.AssembleOptionsFromFlags()
	if err != nil {
		glog.Exitf("bad flags: %v", err)
	}
	if _, err := sheet.Discover(*root); err != nil {
		glog.Exitf("checking %s: %v", *root, err)
	}

	figure.NewFigure("sheetweb", "", true).Print()

	if *debugListenAddress != "" {
		go http.ListenAndServe(*debugListenAddress, nil)
	}

	r := mux.NewRouter()
	web.NewHandler(*root, opts).RegisterRoutes(r)

	glog.Infof("serving %s on %s", *root, *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.CombinedLoggingHandler(os.Stdout, r)))
}
