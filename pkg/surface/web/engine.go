package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var embedded embed.FS

// TemplatesFS exposes the embedded layout so callers can copy or extend it.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}

// Option configures the template engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk. Templates found there
// take precedence over the embedded layout.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files instead of the embedded layout.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine renders pages with a pongo2 template set. Parsed templates are cached.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

// NewEngine builds an engine. Without WithFS the embedded layout is used.
func NewEngine(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".html"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.templates == nil {
		cfg.templates = TemplatesFS()
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("web: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))

	engine := &Engine{
		templateSet: pongo2.NewSet("crudform", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}
	if len(cfg.globalData) > 0 {
		if engine.templateSet.Globals == nil {
			engine.templateSet.Globals = make(pongo2.Context)
		}
		engine.templateSet.Globals.Update(pongo2.Context(cfg.globalData))
	}
	return engine, nil
}

// Render executes the named template with data and writes the result to out.
func (e *Engine) Render(out io.Writer, name string, data map[string]any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("web: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return err
	}

	// A failing template writes nothing to out.
	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(pongo2.Context(data), &buf)
	e.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("web: execute template %q: %w", templatePath, err)
	}
	_, err = buf.WriteTo(out)
	return err
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("web: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}
