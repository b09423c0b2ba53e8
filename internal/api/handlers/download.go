package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type DownloadHandler struct {
	OutputDir string
}

// Download serves a generated file as an attachment. Only the base name of
// the path parameter is used, so nothing outside the output directory is
// reachable.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimSpace(r.URL.Query().Get("path")))
	if name == "." || name == "/" || name == ".." || strings.HasPrefix(name, ".") {
		writeError(w, r, http.StatusBadRequest, "path is required")
		return
	}

	full := filepath.Join(h.OutputDir, name)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, r, http.StatusNotFound, "file not found")
		return
	}

	if strings.EqualFold(filepath.Ext(name), ".zip") {
		w.Header().Set("Content-Type", "application/zip")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, full)
}
