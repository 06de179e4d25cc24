// Package testsupport holds fakes shared by package tests: an in-memory
// repository session with fault injection and a scripted surface.
package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/repository"
)

// Faults injects errors at individual session stages. A nil field means the
// stage succeeds.
type Faults struct {
	All      error
	First    error
	Begin    error
	Insert   error
	Save     error
	Remove   error
	Reload   error
	Commit   error
	Rollback error
}

// Calls counts transaction lifecycle calls.
type Calls struct {
	Begin    int
	Commit   int
	Rollback int
}

// Session is an in-memory repository.Session for entities of type T. Writes
// are staged per transaction and only become visible on Commit.
type Session[T any] struct {
	mu     sync.Mutex
	schema *model.Schema
	rows   map[uint]T
	nextID uint

	Faults Faults
	Calls  Calls
}

var _ repository.Session = (*Session[struct{ ID uint }])(nil)

// NewSession seeds a session with rows. Rows without a primary key get one
// assigned in order.
func NewSession[T any](seed ...T) *Session[T] {
	s := &Session[T]{
		schema: model.MustSchemaOf[T](),
		rows:   make(map[uint]T),
		nextID: 1,
	}
	for i := range seed {
		row := seed[i]
		id, _ := s.schema.ID(&row)
		if id == 0 {
			id = s.nextID
			_ = s.schema.SetID(&row, id)
		}
		if id >= s.nextID {
			s.nextID = id + 1
		}
		s.rows[id] = row
	}
	return s
}

// Rows returns committed rows ordered by primary key.
func (s *Session[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Session[T]) sortedLocked() []T {
	ids := make([]uint, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.rows[id])
	}
	return out
}

func (s *Session[T]) All(_ context.Context, dest any) error {
	if s.Faults.All != nil {
		return s.Faults.All
	}
	out, ok := dest.(*[]T)
	if !ok {
		return fmt.Errorf("testsupport: All needs *[]%s, got %T", s.schema.Name, dest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	*out = s.sortedLocked()
	return nil
}

func (s *Session[T]) First(_ context.Context, dest any, id uint) error {
	if s.Faults.First != nil {
		return s.Faults.First
	}
	out, ok := dest.(*T)
	if !ok {
		return fmt.Errorf("testsupport: First needs *%s, got %T", s.schema.Name, dest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, found := s.rows[id]
	if !found {
		return repository.ErrNotFound
	}
	*out = row
	return nil
}

func (s *Session[T]) Begin(_ context.Context) (repository.Tx, error) {
	s.mu.Lock()
	s.Calls.Begin++
	s.mu.Unlock()
	if s.Faults.Begin != nil {
		return nil, s.Faults.Begin
	}
	return &tx[T]{session: s, staged: make(map[uint]*T), removed: make(map[uint]bool)}, nil
}

type tx[T any] struct {
	session *Session[T]
	staged  map[uint]*T
	removed map[uint]bool
	done    bool
}

func (t *tx[T]) entity(v any) (*T, uint, error) {
	item, ok := v.(*T)
	if !ok {
		return nil, 0, fmt.Errorf("testsupport: expected *%s, got %T", t.session.schema.Name, v)
	}
	id, err := t.session.schema.ID(item)
	return item, id, err
}

func (t *tx[T]) Insert(_ context.Context, v any) error {
	if t.session.Faults.Insert != nil {
		return t.session.Faults.Insert
	}
	item, _, err := t.entity(v)
	if err != nil {
		return err
	}
	t.session.mu.Lock()
	id := t.session.nextID
	t.session.nextID++
	t.session.mu.Unlock()
	if err := t.session.schema.SetID(item, id); err != nil {
		return err
	}
	row := *item
	t.staged[id] = &row
	return nil
}

func (t *tx[T]) Save(_ context.Context, v any) error {
	if t.session.Faults.Save != nil {
		return t.session.Faults.Save
	}
	item, id, err := t.entity(v)
	if err != nil {
		return err
	}
	row := *item
	t.staged[id] = &row
	return nil
}

func (t *tx[T]) Remove(_ context.Context, v any) error {
	if t.session.Faults.Remove != nil {
		return t.session.Faults.Remove
	}
	_, id, err := t.entity(v)
	if err != nil {
		return err
	}
	t.removed[id] = true
	return nil
}

func (t *tx[T]) Reload(_ context.Context, v any) error {
	if t.session.Faults.Reload != nil {
		return t.session.Faults.Reload
	}
	item, id, err := t.entity(v)
	if err != nil {
		return err
	}
	if row, ok := t.staged[id]; ok {
		*item = *row
		return nil
	}
	t.session.mu.Lock()
	defer t.session.mu.Unlock()
	row, ok := t.session.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	*item = row
	return nil
}

func (t *tx[T]) Commit() error {
	t.session.mu.Lock()
	defer t.session.mu.Unlock()
	t.session.Calls.Commit++
	if t.done {
		return fmt.Errorf("testsupport: transaction already finished")
	}
	if t.session.Faults.Commit != nil {
		return t.session.Faults.Commit
	}
	t.done = true
	for id, row := range t.staged {
		t.session.rows[id] = *row
	}
	for id := range t.removed {
		delete(t.session.rows, id)
	}
	return nil
}

func (t *tx[T]) Rollback() error {
	t.session.mu.Lock()
	defer t.session.mu.Unlock()
	t.session.Calls.Rollback++
	if t.done {
		return fmt.Errorf("testsupport: transaction already finished")
	}
	t.done = true
	return t.session.Faults.Rollback
}
