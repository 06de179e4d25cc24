package testsupport

import (
	"context"

	"github.com/goliatone/go-crudform/pkg/surface"
)

// Event is one output call recorded by Surface.
type Event struct {
	Kind string
	Text string
}

// RenderedWidget is one input call recorded by Surface.
type RenderedWidget struct {
	Kind    string
	Form    string
	Key     string
	Label   string
	Help    string
	Default any
	Step    any
}

// Surface is a scripted surface.Surface. Inputs returns a value per widget
// key (the default is returned otherwise), Submit marks forms whose button
// fires, and Section picks the sidebar option (negative keeps the default).
type Surface struct {
	Inputs  map[string]any
	Submit  map[string]bool
	Section int
	Fail    map[string]error

	Events  []Event
	Widgets []RenderedWidget
	Sidebar []string

	state surface.State
	form  string
}

var _ surface.Surface = (*Surface)(nil)

// NewSurface returns a Surface with its own session state.
func NewSurface() *Surface {
	return &Surface{
		Inputs:  make(map[string]any),
		Submit:  make(map[string]bool),
		Fail:    make(map[string]error),
		Section: -1,
		state:   surface.NewMemoryState(),
	}
}

// NextPass clears recorded output and scripted input while keeping session
// state, the way a new request from the same user would.
func (s *Surface) NextPass() {
	s.Events = nil
	s.Widgets = nil
	s.Sidebar = nil
	s.Inputs = make(map[string]any)
	s.Submit = make(map[string]bool)
	s.Fail = make(map[string]error)
	s.Section = -1
	s.form = ""
}

// Texts returns the recorded texts of one event kind.
func (s *Surface) Texts(kind string) []string {
	var out []string
	for _, e := range s.Events {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

func (s *Surface) emit(kind, text string) { s.Events = append(s.Events, Event{Kind: kind, Text: text}) }

func (s *Surface) Title(text string)     { s.emit("title", text) }
func (s *Surface) Subheader(text string) { s.emit("subheader", text) }
func (s *Surface) Text(text string)      { s.emit("text", text) }
func (s *Surface) HTML(markup string)    { s.emit("html", markup) }
func (s *Surface) Success(text string)   { s.emit("success", text) }
func (s *Surface) Warning(text string)   { s.emit("warning", text) }
func (s *Surface) Error(text string)     { s.emit("error", text) }

func (s *Surface) BeginForm(key, title string) {
	s.form = key
	s.emit("form", title)
}

func (s *Surface) EndForm() {
	s.emit("end_form", s.form)
	s.form = ""
}

func (s *Surface) record(kind string, w surface.Widget, def, step any) error {
	s.Widgets = append(s.Widgets, RenderedWidget{
		Kind: kind, Form: s.form, Key: w.Key, Label: w.Label, Help: w.Help, Default: def, Step: step,
	})
	return s.Fail[w.Key]
}

func (s *Surface) TextInput(_ context.Context, w surface.Widget, value string) (string, error) {
	if err := s.record("text", w, value, nil); err != nil {
		return "", err
	}
	if v, ok := s.Inputs[w.Key].(string); ok {
		return v, nil
	}
	return value, nil
}

func (s *Surface) IntegerInput(_ context.Context, w surface.Widget, value, step int64) (int64, error) {
	if err := s.record("integer", w, value, step); err != nil {
		return 0, err
	}
	if v, ok := s.Inputs[w.Key].(int64); ok {
		return v, nil
	}
	return value, nil
}

func (s *Surface) FloatInput(_ context.Context, w surface.Widget, value, step float64) (float64, error) {
	if err := s.record("float", w, value, step); err != nil {
		return 0, err
	}
	if v, ok := s.Inputs[w.Key].(float64); ok {
		return v, nil
	}
	return value, nil
}

func (s *Surface) Checkbox(_ context.Context, w surface.Widget, value bool) (bool, error) {
	if err := s.record("checkbox", w, value, nil); err != nil {
		return false, err
	}
	if v, ok := s.Inputs[w.Key].(bool); ok {
		return v, nil
	}
	return value, nil
}

func (s *Surface) SubmitButton(_ context.Context, key, label string) (bool, error) {
	if err := s.record("submit", surface.Widget{Key: key, Label: label}, nil, nil); err != nil {
		return false, err
	}
	return s.Submit[s.form], nil
}

func (s *Surface) SidebarSelect(_ context.Context, label string, options []string, def int) (int, error) {
	s.Sidebar = append([]string(nil), options...)
	s.emit("sidebar", label)
	if s.Section >= 0 && s.Section < len(options) {
		return s.Section, nil
	}
	return def, nil
}

func (s *Surface) State() surface.State { return s.state }
