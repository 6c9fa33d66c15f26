package build

import (
	"errors"
	"fmt"
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrNotebookNotFound = errors.New("notebook not found")
)

type ValidationError struct {
	Message string
	MaxTTL  int64
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError is returned when no cluster resource knows about the id.
// It unwraps to ErrBookNotFound or ErrNotebookNotFound.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	name := "Book"
	if e.Kind == KindNotebook {
		name = "NoteBook"
	}
	return fmt.Sprintf("%s %q does not exist or the build has not started yet", name, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.Kind == KindNotebook {
		return ErrNotebookNotFound
	}
	return ErrBookNotFound
}
