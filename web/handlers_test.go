package web

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-spritesheet/sheet"
	"badc0de.net/pkg/go-spritesheet/sstesting"
)

func testServer(t *testing.T, root string) *httptest.Server {
	t.Helper()
	h := NewHandler(root, sheet.Options{Consistency: sheet.Individual, Align: sheet.BottomCenter, Margin: 2, FontSize: 0})
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	walk := sstesting.StripDir(t, root, 0, "walk")
	c := color.NRGBA{20, 160, 220, 255}
	sstesting.WriteFrame(t, walk, 1, sstesting.SolidFrame(6, 6, image.Rect(1, 1, 5, 5), c))
	sstesting.WriteFrame(t, walk, 2, sstesting.SolidFrame(6, 6, image.Rect(2, 2, 4, 4), c))
	// A strip folder a renderer created but has not written frames into yet.
	sstesting.StripDir(t, root, 1, "jump")
	return root
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes(t *testing.T) {
	srv := testServer(t, testTree(t))

	for _, tt := range []struct {
		path     string
		status   int
		mimeType string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8"},
		{"/sheet.png", http.StatusOK, "image/png"},
		{"/sheet.json", http.StatusOK, "application/json"},
		{"/strip/0.gif", http.StatusOK, "image/gif"},
		{"/strip/0/1.png", http.StatusOK, "image/png"},
		{"/strip/0/7.png", http.StatusNotFound, ""},
		{"/strip/1.gif", http.StatusNotFound, ""},
		{"/strip/9.gif", http.StatusNotFound, ""},
	} {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, srv.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d; want %d", resp.StatusCode, tt.status)
			}
			if tt.mimeType != "" {
				if got := resp.Header.Get("Content-Type"); got != tt.mimeType {
					t.Errorf("content type = %q; want %q", got, tt.mimeType)
				}
			}
		})
	}
}

func TestMissingTree(t *testing.T) {
	srv := testServer(t, filepath.Join(t.TempDir(), "nope"))

	for _, path := range []string{"/", "/sheet.png", "/sheet.json", "/strip/0.gif"} {
		t.Run(path, func(t *testing.T) {
			resp := get(t, srv.URL+path)
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("status = %d; want %d", resp.StatusCode, http.StatusNotFound)
			}
		})
	}
}

func TestSheetETag(t *testing.T) {
	srv := testServer(t, testTree(t))

	first := get(t, srv.URL+"/sheet.png")
	etag := first.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("no ETag on sheet response")
	}

	req, err := http.NewRequest("GET", srv.URL+"/sheet.png", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("If-None-Match", etag)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d; want %d", resp.StatusCode, http.StatusNotModified)
	}
}
