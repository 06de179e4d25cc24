// Package tui implements surface.Surface on an interactive terminal. Output
// is printed as it happens; a form asks whether to fill it in before
// prompting for its fields.
package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-crudform/pkg/surface"
)

// Theme holds the prefixes printed before status messages.
type Theme struct {
	SuccessPrefix string
	WarningPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used unless WithTheme overrides it.
var DefaultTheme = Theme{
	SuccessPrefix: "[ok] ",
	WarningPrefix: "[warn] ",
	ErrorPrefix:   "[error] ",
}

// Option configures a Surface.
type Option func(*Surface)

// WithPromptDriver overrides the survey backed driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Surface) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput redirects printed output. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Surface) {
		if w != nil {
			s.out = w
		}
	}
}

// WithState supplies the session state. Defaults to a fresh MemoryState.
func WithState(state surface.State) Option {
	return func(s *Surface) {
		if state != nil {
			s.state = state
		}
	}
}

// WithTheme sets the status prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Surface) {
		s.theme = theme
	}
}

// Surface prompts on a terminal. It lives for the whole terminal session, so
// its state carries form phases from one pass to the next.
type Surface struct {
	driver PromptDriver
	out    io.Writer
	state  surface.State
	theme  Theme
	strip  *bluemonday.Policy

	form    string
	asked   bool
	filling bool
}

var _ surface.Surface = (*Surface)(nil)

// New builds a terminal surface.
func New(options ...Option) *Surface {
	s := &Surface{
		driver: newSurveyDriver(),
		out:    os.Stdout,
		state:  surface.NewMemoryState(),
		theme:  DefaultTheme,
		strip:  bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *Surface) println(text string) { _, _ = fmt.Fprintln(s.out, text) }

func (s *Surface) Title(text string) {
	s.println("")
	s.println(strings.ToUpper(text))
	s.println(strings.Repeat("=", len(text)))
}

func (s *Surface) Subheader(text string) {
	s.println("")
	s.println(text)
	s.println(strings.Repeat("-", len(text)))
}

func (s *Surface) Text(text string) { s.println(text) }

// HTML prints the text content of markup with tags removed.
func (s *Surface) HTML(markup string) {
	plain := html.UnescapeString(s.strip.Sanitize(markup))
	for _, line := range strings.Split(plain, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.println(strings.TrimRight(line, " \t"))
	}
}

func (s *Surface) Success(text string) { s.println(s.theme.SuccessPrefix + text) }
func (s *Surface) Warning(text string) { s.println(s.theme.WarningPrefix + text) }
func (s *Surface) Error(text string)   { s.println(s.theme.ErrorPrefix + text) }

// BeginForm prints the form title. Whether the user fills it in is asked at
// the first input.
func (s *Surface) BeginForm(key, title string) {
	s.form = key
	s.asked = false
	s.filling = false
	s.println("")
	s.println(title)
}

func (s *Surface) EndForm() {
	s.form = ""
	s.asked = false
	s.filling = false
}

var errNoForm = errors.New("tui: input outside a form")

// prompting reports whether inputs of the current form should be asked for.
// Inputs outside a form are always asked for.
func (s *Surface) prompting(ctx context.Context) (bool, error) {
	if s.form == "" {
		return true, nil
	}
	if s.asked {
		return s.filling, nil
	}
	fill, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Fill in this form?", Default: false})
	if err != nil {
		return false, err
	}
	s.asked = true
	s.filling = fill
	return fill, nil
}

func (s *Surface) TextInput(ctx context.Context, w surface.Widget, value string) (string, error) {
	ok, err := s.prompting(ctx)
	if err != nil || !ok {
		return value, err
	}
	return s.driver.Input(ctx, InputConfig{Message: w.Label, Default: value, Help: w.Help})
}

func (s *Surface) IntegerInput(ctx context.Context, w surface.Widget, value, step int64) (int64, error) {
	ok, err := s.prompting(ctx)
	if err != nil || !ok {
		return value, err
	}
	raw, err := s.driver.Input(ctx, InputConfig{
		Message: w.Label,
		Default: strconv.FormatInt(value, 10),
		Help:    w.Help,
		Validator: func(in string) error {
			_, err := strconv.ParseInt(strings.TrimSpace(in), 10, 64)
			if err != nil {
				return fmt.Errorf("%q is not a whole number", in)
			}
			return nil
		},
	})
	if err != nil {
		return value, err
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return value, fmt.Errorf("tui: %s: %w", w.Key, err)
	}
	return parsed, nil
}

func (s *Surface) FloatInput(ctx context.Context, w surface.Widget, value, step float64) (float64, error) {
	ok, err := s.prompting(ctx)
	if err != nil || !ok {
		return value, err
	}
	raw, err := s.driver.Input(ctx, InputConfig{
		Message: w.Label,
		Default: strconv.FormatFloat(value, 'f', -1, 64),
		Help:    w.Help,
		Validator: func(in string) error {
			_, err := strconv.ParseFloat(strings.TrimSpace(in), 64)
			if err != nil {
				return fmt.Errorf("%q is not a number", in)
			}
			return nil
		},
	})
	if err != nil {
		return value, err
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return value, fmt.Errorf("tui: %s: %w", w.Key, err)
	}
	return parsed, nil
}

func (s *Surface) Checkbox(ctx context.Context, w surface.Widget, value bool) (bool, error) {
	ok, err := s.prompting(ctx)
	if err != nil || !ok {
		return value, err
	}
	return s.driver.Confirm(ctx, ConfirmConfig{Message: w.Label, Default: value, Help: w.Help})
}

// SubmitButton asks for confirmation when the form was filled in.
func (s *Surface) SubmitButton(ctx context.Context, key, label string) (bool, error) {
	if s.form == "" {
		return false, errNoForm
	}
	if !s.filling {
		return false, nil
	}
	return s.driver.Confirm(ctx, ConfirmConfig{Message: label + "?", Default: true})
}

func (s *Surface) SidebarSelect(ctx context.Context, label string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return def, nil
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: def})
	if err != nil {
		return def, err
	}
	if idx < 0 || idx >= len(options) {
		return def, nil
	}
	return idx, nil
}

func (s *Surface) State() surface.State { return s.state }

// Renderer draws one pass onto a surface. page.Page satisfies it.
type Renderer interface {
	Render(ctx context.Context, s surface.Surface) error
}

// Run renders passes until the user declines to continue, aborts a prompt, or
// ctx is done. Errors of a pass are shown and logged, and the loop goes on.
func Run(ctx context.Context, s *Surface, r Renderer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Render(ctx, s); err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			logger.Error("render pass failed", "error", err)
			s.Error(err.Error())
		}
		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Continue?", Default: true})
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			return err
		}
		if !again {
			return nil
		}
	}
}
