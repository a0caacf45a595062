package controllers

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/deviceexpress/pkg/storage"
)

// ServeStorage handles GET /storage/*: public files from the default disk.
// Product image URLs point here when the local driver is active; the s3
// driver serves straight from the bucket.
func ServeStorage(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	if p == "" || strings.Contains(p, "..") {
		http.NotFound(w, r)
		return
	}
	if !storage.Exists(p) {
		http.NotFound(w, r)
		return
	}

	data, err := storage.Get(p)
	if err != nil {
		http.Error(w, "could not read file", http.StatusInternalServerError)
		return
	}

	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", http.DetectContentType(data))
	}
	w.Write(data)
}
