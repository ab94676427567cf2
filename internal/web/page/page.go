// Package page holds the host page the upload controller renders into.
package page

import (
	_ "embed"
	"os"

	"github.com/bryanwahyu/rxscan/internal/web/dom"
)

//go:embed index.html
var indexHTML string

// Stylesheet is served at /static/style.css.
//
//go:embed style.css
var Stylesheet []byte

// IndexHTML returns the pristine page markup.
func IndexHTML() string { return indexHTML }

// New parses a fresh copy of the embedded page.
func New() (*dom.Document, error) {
	return dom.ParseString(indexHTML)
}

// LoadFile parses a page from disk; an empty path means the embedded page.
func LoadFile(path string) (*dom.Document, error) {
	if path == "" {
		return New()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}
