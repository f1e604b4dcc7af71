package blog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports an operation on a post id that does not exist.
var ErrNotFound = errors.New("post not found")

// ValidationError reports rejected client input. Fields lists the missing
// required fields on create; an empty Fields means an update supplied no
// usable data at all.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "No valid data provided for update."
	}
	fields := make([]string, len(e.Fields))
	copy(fields, e.Fields)
	// Only the first listed field is capitalized in the client message.
	fields[0] = strings.ToUpper(fields[0][:1]) + fields[0][1:]
	return fmt.Sprintf("Missing required field(s): %s", strings.Join(fields, ", "))
}

// PersistenceError reports a failed durable write. The triggering mutation
// was not applied: the in-memory collection still matches the file.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persist posts: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
