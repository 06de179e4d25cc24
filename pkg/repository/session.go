package repository

import "context"

// Session is the storage seam a Repository runs on. Destinations are
// pointers to an entity or to a slice of entities.
type Session interface {
	All(ctx context.Context, dest any) error
	// First loads the row with the given primary key into dest and returns
	// ErrNotFound when there is none.
	First(ctx context.Context, dest any, id uint) error
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work. Commit and Rollback end it; calling either twice
// is an error of the implementation.
type Tx interface {
	Insert(ctx context.Context, entity any) error
	Save(ctx context.Context, entity any) error
	Remove(ctx context.Context, entity any) error
	// Reload refreshes entity from storage using its primary key.
	Reload(ctx context.Context, entity any) error
	Commit() error
	Rollback() error
}
