package page

import (
	"sort"
	"strings"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/repository"
)

// Describe turns an error returned by Render into a message for the user.
// Hosts show it and log the original error.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if model.IsValidationFailure(err) {
		fields := model.FieldErrors(err)
		if len(fields) == 0 {
			return "Please correct the form: " + err.Error()
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+fields[name])
		}
		return "Please correct the form: " + strings.Join(parts, "; ")
	}
	switch repository.KindOf(err) {
	case repository.KindConnection:
		return "The database is unavailable. Please try again later."
	case repository.KindCommit:
		return "The change could not be saved."
	case repository.KindQuery:
		return "The request could not be completed."
	}
	return err.Error()
}
