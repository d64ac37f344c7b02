package server

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
)

type asset struct {
	mediaType string
	data      []byte
}

// Assets serves the viewer page from memory, minified once at startup.
type Assets struct {
	files   map[string]asset
	modTime time.Time
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
	return m
}

func mediaType(name string) string {
	switch path.Ext(name) {
	case ".js", ".mjs":
		return "text/javascript"
	case ".json":
		return "application/json"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		mt, _, _ := strings.Cut(t, ";")
		return mt
	}
	return "application/octet-stream"
}

// LoadAssets reads every file in fsys and minifies the ones with a known
// text type. A file that fails to minify is served as is.
func LoadAssets(fsys fs.FS) (*Assets, error) {
	m := newMinifier()
	a := &Assets{files: make(map[string]asset), modTime: time.Now()}
	var saved int

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		mt := mediaType(name)
		data := raw
		var buf bytes.Buffer
		if err := m.Minify(mt, &buf, bytes.NewReader(raw)); err == nil {
			data = buf.Bytes()
		} else if err != minify.ErrNotExist {
			log.Printf("Serving %s unminified: %v", name, err)
		}
		saved += len(raw) - len(data)
		a.files["/"+name] = asset{mediaType: mt, data: data}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load frontend assets: %w", err)
	}
	log.Printf("Loaded %d frontend assets (%d bytes saved by minify)", len(a.files), saved)
	return a, nil
}

func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}
	f, ok := a.files[name]
	if !ok {
		f, ok = a.files[name+"/index.html"]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.mediaType)
	http.ServeContent(w, r, name, a.modTime, bytes.NewReader(f.data))
}
