package repository

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure.
type Kind int

const (
	KindQuery Kind = iota + 1
	KindConnection
	KindCommit
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindCommit:
		return "commit"
	}
	return "unknown"
}

// Stage names the step of an operation that failed.
type Stage string

const (
	StageRead   Stage = "read"
	StageBegin  Stage = "begin"
	StageWrite  Stage = "write"
	StageReload Stage = "reload"
	StageCommit Stage = "commit"
)

// Operation names, as they appear in errors and metrics.
const (
	OpGetAll  = "get_all"
	OpGetByID = "get_by_id"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrConnection = errors.New("repository: connection failure")
	ErrQuery      = errors.New("repository: query failure")
	ErrCommit     = errors.New("repository: commit failure")

	// ErrNotFound is returned by Session.First when no row matches. It never
	// escapes a Repository: lookups report absence as a nil entity.
	ErrNotFound = errors.New("repository: record not found")
)

// Error is the only failure type a Repository returns. The native storage
// error is preserved as the cause.
type Error struct {
	Kind   Kind
	Op     string
	Entity string
	Stage  Stage
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("repository: %s failure during %s in %s for %s: %v", e.Kind, e.Stage, e.Op, e.Entity, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrQuery:
		return e.Kind == KindQuery
	case ErrCommit:
		return e.Kind == KindCommit
	}
	return false
}

// KindOf returns the kind of a repository error, or zero for other errors.
func KindOf(err error) Kind {
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return repoErr.Kind
	}
	return 0
}
