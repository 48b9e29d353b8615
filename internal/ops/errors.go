package ops

import "fmt"

// NotFoundError marks programmer errors: the caller addressed a card, cell,
// or lane that does not exist. The operation is aborted without mutating;
// nothing is surfaced to the user.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// BadIndexError marks an out-of-range lane index on reorder.
type BadIndexError struct {
	Index int
	Len   int
}

func (e BadIndexError) Error() string {
	return fmt.Sprintf("index %d out of range (len %d)", e.Index, e.Len)
}
