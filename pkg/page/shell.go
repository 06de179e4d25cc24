package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-crudform/pkg/surface"
)

const (
	// SectionsLabel captions the sidebar selector.
	SectionsLabel = "Sections"
	// SelectedSectionKey holds the name of the current section in the
	// surface state.
	SelectedSectionKey = "shell_selected_section"
)

// Section is a named entry of the shell.
type Section struct {
	Name string
	Page Page
}

// Shell is the top level page: a sidebar selector over ordered sections.
type Shell struct {
	sections []Section
}

// NewShell builds a shell. The first section is the default selection.
func NewShell(sections ...Section) (*Shell, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("page: shell needs at least one section")
	}
	seen := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		name := strings.TrimSpace(section.Name)
		if name == "" {
			return nil, fmt.Errorf("page: section name is required")
		}
		if section.Page == nil {
			return nil, fmt.Errorf("page: section %q has no page", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("page: duplicate section %q", name)
		}
		seen[name] = struct{}{}
	}
	return &Shell{sections: append([]Section(nil), sections...)}, nil
}

// Names lists section names in order.
func (sh *Shell) Names() []string {
	names := make([]string, 0, len(sh.sections))
	for _, section := range sh.sections {
		names = append(names, section.Name)
	}
	return names
}

// Render reads the sidebar selection and renders that section. The current
// section is kept in the surface state and offered as the default, so a pass
// without a new choice stays where the user is.
func (sh *Shell) Render(ctx context.Context, s surface.Surface) error {
	current := sh.current(s.State())
	idx, err := s.SidebarSelect(ctx, SectionsLabel, sh.Names(), current)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(sh.sections) {
		idx = current
	}
	s.State().Set(SelectedSectionKey, sh.sections[idx].Name)
	return sh.sections[idx].Page.Render(ctx, s)
}

// current returns the index of the section recorded in state, or 0.
func (sh *Shell) current(state surface.State) int {
	raw, ok := state.Get(SelectedSectionKey)
	if !ok {
		return 0
	}
	name, _ := raw.(string)
	for i, section := range sh.sections {
		if section.Name == name {
			return i
		}
	}
	return 0
}
