package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"html"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/texcodec/bcn/bcn"
	"github.com/texcodec/bcn/dds"
)

var serveDir string

func main() {
	var addr string
	flag.StringVar(&addr, "addr", ":8077", "listen address")
	flag.StringVar(&serveDir, "dir", ".", "directory of .dds/.bcz files to browse")
	flag.Parse()

	r := mux.NewRouter()
	r.HandleFunc("/", handlerIndex)
	r.HandleFunc("/json/list", handlerList)
	r.HandleFunc("/json/info/{file}", handlerInfo)
	r.HandleFunc("/png/{file}", handlerPNG)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v (textures from %s)", addr, serveDir)
	log.Fatal(http.ListenAndServe(addr, h))
}

func handlerIndex(w http.ResponseWriter, r *http.Request) {
	files, err := listTextures()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintln(w, "<!DOCTYPE html>\n<title>bcnview</title>\n<h1>Textures</h1>\n<ul>")
	for _, f := range files {
		href := url.PathEscape(f)
		fmt.Fprintf(w, "<li><a href=\"/png/%s\">%s</a> <a href=\"/json/info/%s\">[info]</a></li>\n",
			href, html.EscapeString(f), href)
	}
	fmt.Fprintln(w, "</ul>")
}

func handlerList(w http.ResponseWriter, r *http.Request) {
	files, err := listTextures()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, files)
}

type textureInfo struct {
	Name      string `json:"name"`
	Container string `json:"container"`
	Format    string `json:"format"`
	DXGI      string `json:"dxgiFormat"`
	SRGB      bool   `json:"srgb"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	MipCount  int    `json:"mipCount"`
	FileSize  int    `json:"fileSize"`
}

func handlerInfo(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(mux.Vars(r)["file"])
	data, err := os.ReadFile(filepath.Join(serveDir, name))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	info := textureInfo{Name: name, Container: "dds", FileSize: len(data)}
	if bytes.HasPrefix(data, []byte("BCZ1")) {
		tex, err := dds.DecodeCompressed(bytes.NewReader(data))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		info.Container = "bcz1"
		info.Format = tex.Format.String()
		info.DXGI = dds.FormatName(dds.DXGIFormat(tex.Format, tex.SRGB))
		info.SRGB = tex.SRGB
		info.Width, info.Height = tex.Width, tex.Height
		info.MipCount = tex.MipCount()
	} else {
		hdr, err := dds.DecodeHeader(bytes.NewReader(data))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		info.Format = hdr.Format.String()
		info.DXGI = dds.FormatName(hdr.DXGIFormat)
		info.SRGB = hdr.SRGB
		info.Width, info.Height = hdr.Width, hdr.Height
		info.MipCount = hdr.MipCount
	}
	writeJSON(w, info)
}

func handlerPNG(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(mux.Vars(r)["file"])
	tex, err := loadTexture(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	mip := 0
	if s := r.URL.Query().Get("mip"); s != "" {
		mip, err = strconv.Atoi(s)
		if err != nil || mip < 0 || mip >= tex.MipCount() {
			writeError(w, http.StatusBadRequest,
				fmt.Errorf("mip %q out of range (file has %d levels)", s, tex.MipCount()))
			return
		}
	}

	mw, mh := dds.MipDimensions(tex.Width, tex.Height, mip)
	img := &bcn.Image{Width: mw, Height: mh, Pix: make([]byte, mw*mh*4)}

	cfg, err := bcn.ConfigInit(tex.Format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	ctx, err := bcn.ContextAlloc(&cfg, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := ctx.DecompressImage(tex.Mips[mip], img); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	std := &image.RGBA{Pix: img.Pix, Stride: mw * 4, Rect: image.Rect(0, 0, mw, mh)}
	if err := png.Encode(w, std); err != nil {
		log.Printf("[web] writing png for %s: %v", name, err)
	}
}

func listTextures() ([]string, error) {
	entries, err := os.ReadDir(serveDir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".dds", ".bcz":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadTexture(name string) (*dds.Texture, error) {
	data, err := os.ReadFile(filepath.Join(serveDir, name))
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("BCZ1")) {
		return dds.DecodeCompressed(bytes.NewReader(data))
	}
	tex, err := dds.Decode(bytes.NewReader(data))
	return tex, errors.Wrapf(err, "decoding %s", name)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(res); err != nil {
		log.Printf("[web] writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	log.Printf("[web] %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		log.Printf("[web] writing error response: %v", err)
	}
}
