// Package web serves a read-only HTTP preview of a frame tree and the sheet
// assembled from it. Nothing under the tree is ever modified; every request
// re-reads the tree, so a tree still being populated by a renderer shows its
// current state on refresh.
package web

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"html/template"
	"image/png"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-spritesheet/preview"
	"badc0de.net/pkg/go-spritesheet/sheet"
)

// thumbnails on the index page fit within this box.
const thumbSize = 96

// Handler serves preview pages for one frame tree.
type Handler struct {
	root string
	opts sheet.Options
}

// NewHandler constructs a web handler assembling the tree at root with the
// passed options.
func NewHandler(root string, opts sheet.Options) *Handler {
	return &Handler{root: root, opts: opts}
}

// RegisterRoutes registers this handler's routes on the passed router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler)
	r.HandleFunc("/sheet.png", h.sheetHandler)
	r.HandleFunc("/sheet.json", h.tocHandler)
	r.HandleFunc("/strip/{idx:[0-9]+}.gif", h.stripGIFHandler)
	r.HandleFunc("/strip/{idx:[0-9]+}/{n:[0-9]+}.png", h.frameHandler)
}

// treeSignature folds every entry's name, size and mtime into one value, so
// ETags change whenever the renderer deposits or replaces a frame.
func (h *Handler) treeSignature() (uint64, error) {
	hash := fnv.New64a()
	err := filepath.WalkDir(h.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(hash, "%s:%d:%d|", path, info.Size(), info.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}

// checkETag writes cache headers, and reports true if the client already has
// the current version and got a 304.
func (h *Handler) checkETag(w http.ResponseWriter, r *http.Request, kind, mime string) bool {
	sig, err := h.treeSignature()
	if err != nil {
		// Tree may be mutating under us; serve without caching.
		return false
	}
	generation := 1 // bump if the way we generate it changes
	etag := fmt.Sprintf(`W/"%s:%d:%016x:%s"`, kind, generation, sig, mime)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public; max-age=10")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (h *Handler) httpError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, sheet.ErrInvalidRoot) {
		http.Error(w, "no such frame tree", http.StatusNotFound)
		return
	}
	if errors.Is(err, sheet.ErrInvalidOptions) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	glog.Errorf("%s: %v", what, err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>sprite sheet preview</title></head>
<body>
<h1>Sheet</h1>
<p><a href="/sheet.png">sheet.png</a> &middot; <a href="/sheet.json">sheet.json</a></p>
<h1>Strips</h1>
<ul>
{{range .}}
<li>
<a href="/strip/{{.Index}}.gif">{{.Index}}: {{.Label}}</a> ({{len .Frames}} frame(s))
{{if .Thumb}}<br><img src="{{.Thumb}}" alt="{{.Label}}">{{end}}
</li>
{{end}}
</ul>
</body></html>
`))

type indexStrip struct {
	sheet.Strip
	Thumb template.URL
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	strips, err := sheet.Discover(h.root)
	if err != nil {
		h.httpError(w, err, "discovering strips for index")
		return
	}

	rows := make([]indexStrip, 0, len(strips))
	for _, s := range strips {
		row := indexStrip{Strip: s}
		if thumb, err := h.stripThumb(s); err == nil {
			row.Thumb = template.URL(thumb)
		} else {
			glog.Errorf("thumbnail for strip %d: %v", s.Index, err)
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, rows); err != nil {
		glog.Errorf("rendering index: %v", err)
	}
}

// stripThumb renders the strip's first frame as an inline data: URI.
func (h *Handler) stripThumb(s sheet.Strip) (string, error) {
	if len(s.Frames) == 0 {
		return "", nil
	}
	img, err := sheet.LoadFrame(s.Frames[0], nil)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, preview.Fit(img, thumbSize, thumbSize)); err != nil {
		return "", err
	}
	return dataurl.New(buf.Bytes(), "image/png").String(), nil
}

func (h *Handler) sheetHandler(w http.ResponseWriter, r *http.Request) {
	mime := "image/png"
	if h.checkETag(w, r, "sheet", mime) {
		return
	}

	sh, err := sheet.Assemble(h.root, h.opts)
	if err != nil {
		h.httpError(w, err, "assembling sheet")
		return
	}
	if n := sh.Report.SkippedCount(); n > 0 {
		w.Header().Set("X-Skipped-Frames", strconv.Itoa(n))
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	sh.EncodePNG(w)
}

func (h *Handler) tocHandler(w http.ResponseWriter, r *http.Request) {
	mime := "application/json"
	if h.checkETag(w, r, "toc", mime) {
		return
	}

	sh, err := sheet.Assemble(h.root, h.opts)
	if err != nil {
		h.httpError(w, err, "assembling sheet for TOC")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	sh.EncodeTOC(w)
}

func (h *Handler) findStrip(idx int) (sheet.Strip, error) {
	strips, err := sheet.Discover(h.root)
	if err != nil {
		return sheet.Strip{}, err
	}
	for _, s := range strips {
		if s.Index == idx {
			return s, nil
		}
	}
	return sheet.Strip{}, errors.Errorf("no strip with index %d", idx)
}

func (h *Handler) stripGIFHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["idx"])
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return
	}

	mime := "image/gif"
	if h.checkETag(w, r, fmt.Sprintf("strip:%d", idx), mime) {
		return
	}

	strip, err := h.findStrip(idx)
	if err != nil {
		if errors.Is(err, sheet.ErrInvalidRoot) {
			h.httpError(w, err, "finding strip")
			return
		}
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var gifOpts sheet.GIFOptions
	gifOpts.Pixelation = h.opts.Pixelation
	if d := r.URL.Query().Get("delay"); d != "" {
		gifOpts.Delay, _ = strconv.Atoi(d)
		// ignore invalid delay
	}

	var buf bytes.Buffer
	if err := sheet.EncodeStripGIF(&buf, strip, gifOpts); err != nil {
		if errors.Is(err, sheet.ErrEmptyStrip) {
			// A frameless strip is a legitimate tree state while a
			// render is still underway; there is just no GIF yet.
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.httpError(w, err, "encoding strip GIF")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) frameHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["idx"])
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return
	}
	n, err := strconv.Atoi(vars["n"])
	if err != nil {
		http.Error(w, "n not a number", http.StatusBadRequest)
		return
	}

	strip, err := h.findStrip(idx)
	if err != nil {
		if errors.Is(err, sheet.ErrInvalidRoot) {
			h.httpError(w, err, "finding strip")
			return
		}
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	for _, frame := range strip.Frames {
		if frame.Number != n {
			continue
		}
		img, err := sheet.LoadFrame(frame, h.opts.Pixelation)
		if err != nil {
			h.httpError(w, err, "decoding frame")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		png.Encode(w, img)
		return
	}
	http.Error(w, fmt.Sprintf("no frame %d in strip %d", n, idx), http.StatusNotFound)
}
