package handlers

import (
	"net/http"
	"os"
	"path/filepath"
)

// Static serves the frontend bundle from dir. Paths that do not match a
// file fall back to index.html so the single-page frontend can handle
// its own routing.
func Static(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}
