// Package viewergrp serves the browser viewer for the ledger.
package viewergrp

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed assets/index.html
var assets embed.FS

// Handlers manages the viewer page.
type Handlers struct {
	index []byte
}

// New parses the viewer page and renders it once for the build provided.
func New(build string) (*Handlers, error) {
	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, struct{ Build string }{build}); err != nil {
		return nil, fmt.Errorf("executing index template: %w", err)
	}

	return &Handlers{index: b.Bytes()}, nil
}

// Index returns the viewer page.
func (h *Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(h.index); err != nil {
		return err
	}

	return nil
}
