// Package page renders the landing page once at startup. The result is an
// immutable byte slice served unchanged for every request.
package page

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mtlprog/chatpage/internal/config"
)

// ContentType is the media type of the rendered page.
const ContentType = "text/html; charset=utf-8"

// Page is a rendered HTML document.
type Page struct {
	body    []byte
	etag    string
	modTime time.Time
}

// New parses the template called name from fsys and executes it with the
// widget settings.
func New(fsys fs.FS, name string, widget config.Widget) (*Page, error) {
	tmpl, err := template.ParseFS(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, widget); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}

	sum := sha256.Sum256(buf.Bytes())

	return &Page{
		body:    buf.Bytes(),
		etag:    `"` + hex.EncodeToString(sum[:8]) + `"`,
		modTime: time.Now().UTC().Truncate(time.Second),
	}, nil
}

// Load renders the page from path when it is non-empty, otherwise from the
// template called name in fallback.
func Load(path string, fallback fs.FS, name string, widget config.Widget) (*Page, error) {
	if path == "" {
		return New(fallback, name, widget)
	}
	return New(os.DirFS(filepath.Dir(path)), filepath.Base(path), widget)
}

// Bytes returns the rendered document. Callers must not modify it.
func (p *Page) Bytes() []byte {
	return p.body
}

// ETag returns the strong entity tag of the document.
func (p *Page) ETag() string {
	return p.etag
}

// ServeHTTP writes the page, honouring conditional and HEAD requests.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("ETag", p.etag)
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "", p.modTime, bytes.NewReader(p.body))
}
