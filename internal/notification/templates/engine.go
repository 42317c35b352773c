package templates

import (
	"bytes"
	"context"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"reflect"
	"sync"
	texttmpl "text/template"
)

// Rendered holds the materialized content from a scenario template.
type Rendered struct {
	Subject   string
	EmailHTML string
}

// Handle is a generic, typed handle for a template scenario.
type Handle[T any] struct {
	id string
}

// Expect creates a typed handle for a given template ID (e.g., "user.verify_email").
func Expect[T any](id string) Handle[T] { return Handle[T]{id: id} }

func (h Handle[T]) ID() string { return h.id }
func (h Handle[T]) DataType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}

// Engine compiles and caches scenario templates from the embedded filesystem.
// Each template file defines a text "subject" block and an html "email_html"
// block; the subject is parsed with text/template and the body with
// html/template so body interpolations are escaped.
type Engine struct {
	fs    fs.FS
	mu    sync.RWMutex
	cache map[string]*compiled
}

type compiled struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

// NewEngine creates a template engine over the embedded templates.
func NewEngine() *Engine {
	return &Engine{fs: EmbeddedFS, cache: make(map[string]*compiled)}
}

// Render is a typed helper that enforces the data type of the handle at compile time.
func Render[T any](ctx context.Context, e *Engine, h Handle[T], data T) (Rendered, error) {
	return e.RenderAny(ctx, h.ID(), data)
}

// RenderAny renders a scenario by ID.
func (e *Engine) RenderAny(_ context.Context, id string, data any) (Rendered, error) {
	c, err := e.getCompiled(id)
	if err != nil {
		return Rendered{}, err
	}

	var out Rendered
	if c.text.Lookup("subject") != nil {
		var buf bytes.Buffer
		if err := c.text.ExecuteTemplate(&buf, "subject", data); err != nil {
			return Rendered{}, fmt.Errorf("render subject: %w", err)
		}
		out.Subject = buf.String()
	}
	if c.html.Lookup("email_html") != nil {
		var buf bytes.Buffer
		if err := c.html.ExecuteTemplate(&buf, "email_html", data); err != nil {
			return Rendered{}, fmt.Errorf("render email_html: %w", err)
		}
		out.EmailHTML = buf.String()
	}
	return out, nil
}

func (e *Engine) getCompiled(id string) (*compiled, error) {
	e.mu.RLock()
	cached, ok := e.cache[id]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := "files/" + id + ".tmpl"
	b, err := fs.ReadFile(e.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read embedded template %q: %w", path, err)
	}

	tText, err := texttmpl.New(id).Option("missingkey=error").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse text blocks (%s): %w", id, err)
	}
	tHTML, err := htmltmpl.New(id).Option("missingkey=error").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse html block (%s): %w", id, err)
	}

	c := &compiled{text: tText, html: tHTML}
	e.mu.Lock()
	e.cache[id] = c
	e.mu.Unlock()
	return c, nil
}
