package service

import "fmt"

// Op names a service operation.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Error adds operation context to a failure while keeping the cause
// reachable through errors.Is and errors.As.
type Error struct {
	Op  Op
	ID  uint
	Err error
}

func (e *Error) Error() string {
	switch e.Op {
	case OpList:
		return fmt.Sprintf("error retrieving items: %v", e.Err)
	case OpGet:
		return fmt.Sprintf("error retrieving item with ID %d: %v", e.ID, e.Err)
	case OpCreate:
		return fmt.Sprintf("error creating item: %v", e.Err)
	case OpUpdate:
		return fmt.Sprintf("error updating item with ID %d: %v", e.ID, e.Err)
	case OpDelete:
		return fmt.Sprintf("error deleting item with ID %d: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("service: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
