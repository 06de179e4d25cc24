// Package surface defines the interactive display a page renders onto. A
// surface is bound to one render pass: output calls append to what the user
// sees, input calls return the widget's current value (the user's entry when
// there is one, the supplied default otherwise).
package surface

import "context"

// Widget identifies an input. Key is unique within a render pass and stable
// across passes so a surface can match submitted values to widgets.
type Widget struct {
	Key   string
	Label string
	Help  string
}

// Surface is implemented by the web and terminal front ends.
type Surface interface {
	Title(text string)
	Subheader(text string)
	Text(text string)
	// HTML shows trusted, already sanitised markup.
	HTML(markup string)
	Success(text string)
	Warning(text string)
	Error(text string)

	// BeginForm groups the inputs that follow until EndForm. Values of a
	// form are only reported as entered once its submit button fires.
	BeginForm(key, title string)
	EndForm()

	TextInput(ctx context.Context, w Widget, value string) (string, error)
	IntegerInput(ctx context.Context, w Widget, value, step int64) (int64, error)
	FloatInput(ctx context.Context, w Widget, value, step float64) (float64, error)
	Checkbox(ctx context.Context, w Widget, value bool) (bool, error)
	// SubmitButton reports whether the enclosing form was submitted in this
	// pass.
	SubmitButton(ctx context.Context, key, label string) (bool, error)
	// SidebarSelect returns the index of the chosen option, falling back to
	// def when nothing valid was chosen.
	SidebarSelect(ctx context.Context, label string, options []string, def int) (int, error)

	// State is the per-user store that survives between render passes.
	State() State
}

// InputError reports an entry of the submitted form that does not fit its
// widget. Raw holds the text as entered.
type InputError struct {
	Key    string
	Raw    string
	Reason string
}

func (e *InputError) Error() string {
	return "surface: " + e.Key + ": " + e.Reason
}
