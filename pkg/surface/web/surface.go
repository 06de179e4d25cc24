// Package web implements surface.Surface over one HTTP request. Each request
// is one render pass: inputs read the posted form, output calls collect
// blocks, and Write renders the collected blocks with the page layout.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-crudform/pkg/surface"
)

const (
	// SubmitField carries the key of the form whose button was pressed.
	SubmitField = "_submit"
	// SectionParam selects the sidebar option by name.
	SectionParam = "section"
	// LayoutTemplate is the template Write renders.
	LayoutTemplate = "page"
)

// Input describes one rendered form control.
type Input struct {
	Type    string
	Name    string
	Label   string
	Help    string
	Value   string
	Step    string
	Checked bool
	Note    string
}

// Block is one unit of page output, in call order.
type Block struct {
	Kind   string
	Text   string
	HTML   string
	Form   string
	Action string
	Input  *Input
}

// SidebarOption is one sidebar entry.
type SidebarOption struct {
	Name     string
	Href     string
	Selected bool
}

// Sidebar is the navigation selector.
type Sidebar struct {
	Label   string
	Options []SidebarOption
}

// Surface collects the output of one render pass.
type Surface struct {
	values    url.Values
	query     url.Values
	submitted string
	state     surface.State

	form    string
	section string
	title   string
	blocks  []Block
	sidebar *Sidebar
}

var _ surface.Surface = (*Surface)(nil)

// NewSurface binds a surface to r. Only POST requests can submit a form.
func NewSurface(r *http.Request, state surface.State) (*Surface, error) {
	if r == nil {
		return nil, fmt.Errorf("web: request is required")
	}
	if state == nil {
		return nil, fmt.Errorf("web: state is required")
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("web: parse form: %w", err)
	}
	s := &Surface{
		values: r.PostForm,
		query:  r.URL.Query(),
		state:  state,
	}
	if r.Method == http.MethodPost {
		s.submitted = strings.TrimSpace(r.PostForm.Get(SubmitField))
	}
	return s, nil
}

// Blocks returns the collected output.
func (s *Surface) Blocks() []Block { return s.blocks }

// Section returns the sidebar option chosen in this pass, if any.
func (s *Surface) Section() string { return s.section }

// Submitted reports the form key posted with the request, if any.
func (s *Surface) Submitted() string { return s.submitted }

// Write renders the collected output through the layout template.
func (s *Surface) Write(w io.Writer, engine *Engine) error {
	title := s.title
	if title == "" && s.section != "" {
		title = s.section
	}
	data := map[string]any{
		"title":  title,
		"blocks": s.blocks,
	}
	if s.sidebar != nil {
		data["sidebar"] = s.sidebar
	}
	return engine.Render(w, LayoutTemplate, data)
}

func (s *Surface) add(b Block) { s.blocks = append(s.blocks, b) }

func (s *Surface) Title(text string) {
	if s.title == "" {
		s.title = text
	}
	s.add(Block{Kind: "title", Text: text})
}

func (s *Surface) Subheader(text string) { s.add(Block{Kind: "subheader", Text: text}) }
func (s *Surface) Text(text string)      { s.add(Block{Kind: "text", Text: text}) }
func (s *Surface) HTML(markup string)    { s.add(Block{Kind: "html", HTML: markup}) }
func (s *Surface) Success(text string)   { s.add(Block{Kind: "success", Text: text}) }
func (s *Surface) Warning(text string)   { s.add(Block{Kind: "warning", Text: text}) }
func (s *Surface) Error(text string)     { s.add(Block{Kind: "error", Text: text}) }

func (s *Surface) BeginForm(key, title string) {
	s.form = key
	action := ""
	if s.section != "" {
		action = "?" + SectionParam + "=" + url.QueryEscape(s.section)
	}
	s.add(Block{Kind: "form_begin", Text: title, Form: key, Action: action})
}

func (s *Surface) EndForm() {
	s.add(Block{Kind: "form_end", Form: s.form})
	s.form = ""
}

// entered returns the posted value of key when the enclosing form is the one
// being submitted.
func (s *Surface) entered(key string) (string, bool) {
	if s.form == "" || s.form != s.submitted {
		return "", false
	}
	values, ok := s.values[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (s *Surface) input(kind string, w surface.Widget) *Input {
	in := &Input{Type: kind, Name: w.Key, Label: w.Label, Help: w.Help}
	s.add(Block{Kind: "input", Form: s.form, Input: in})
	return in
}

func (s *Surface) TextInput(_ context.Context, w surface.Widget, value string) (string, error) {
	if raw, ok := s.entered(w.Key); ok {
		value = raw
	}
	s.input("text", w).Value = value
	return value, nil
}

func (s *Surface) IntegerInput(_ context.Context, w surface.Widget, value, step int64) (int64, error) {
	in := s.input("number", w)
	in.Step = strconv.FormatInt(step, 10)
	in.Value = strconv.FormatInt(value, 10)
	if raw, ok := s.entered(w.Key); ok {
		parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			in.Note = fmt.Sprintf("%q is not a whole number", raw)
			return value, &surface.InputError{Key: w.Key, Raw: raw, Reason: in.Note}
		}
		value = parsed
		in.Value = strconv.FormatInt(value, 10)
	}
	return value, nil
}

func (s *Surface) FloatInput(_ context.Context, w surface.Widget, value, step float64) (float64, error) {
	in := s.input("number", w)
	in.Step = "any"
	if step > 0 {
		in.Step = strconv.FormatFloat(step, 'f', -1, 64)
	}
	in.Value = strconv.FormatFloat(value, 'f', -1, 64)
	if raw, ok := s.entered(w.Key); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			in.Note = fmt.Sprintf("%q is not a number", raw)
			return value, &surface.InputError{Key: w.Key, Raw: raw, Reason: in.Note}
		}
		value = parsed
		in.Value = strconv.FormatFloat(value, 'f', -1, 64)
	}
	return value, nil
}

// Checkbox reads an unchecked box as false when its form was submitted, since
// browsers omit unchecked boxes from the post.
func (s *Surface) Checkbox(_ context.Context, w surface.Widget, value bool) (bool, error) {
	if s.form != "" && s.form == s.submitted {
		_, value = s.values[w.Key]
	}
	s.input("checkbox", w).Checked = value
	return value, nil
}

func (s *Surface) SubmitButton(_ context.Context, key, label string) (bool, error) {
	s.add(Block{Kind: "submit", Text: label, Form: s.form, Input: &Input{Name: key, Value: s.form}})
	return s.form != "" && s.form == s.submitted, nil
}

func (s *Surface) SidebarSelect(_ context.Context, label string, options []string, def int) (int, error) {
	selected := def
	if name := s.query.Get(SectionParam); name != "" {
		for i, option := range options {
			if option == name {
				selected = i
				break
			}
		}
	}
	if selected < 0 || selected >= len(options) {
		selected = 0
	}

	sidebar := &Sidebar{Label: label, Options: make([]SidebarOption, 0, len(options))}
	for i, option := range options {
		sidebar.Options = append(sidebar.Options, SidebarOption{
			Name:     option,
			Href:     "?" + SectionParam + "=" + url.QueryEscape(option),
			Selected: i == selected,
		})
	}
	s.sidebar = sidebar
	if len(options) > 0 {
		s.section = options[selected]
	}
	return selected, nil
}

func (s *Surface) State() surface.State { return s.state }
