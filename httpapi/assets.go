package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed assets/*
var embeddedAssets embed.FS

var assetsFS fs.FS

func init() {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		assetsFS = embeddedAssets
		return
	}
	assetsFS = sub
}

func serveAsset(w http.ResponseWriter, r *http.Request, name string) {
	f, err := http.FS(assetsFS).Open(name)
	if err != nil {
		http.Error(w, "asset not found", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		http.Error(w, "asset not found", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, name, stat.ModTime(), f)
}
