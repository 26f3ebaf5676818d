package tree

import "fmt"

// DeserializeError reports a malformed or truncated binary payload, with the
// byte offset at which the problem was found.
type DeserializeError struct {
	Offset int
	Reason string
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("tree: deserialize failed at byte %d: %s", e.Offset, e.Reason)
}

func newDeserializeError(offset int, reason string) error {
	return &DeserializeError{Offset: offset, Reason: reason}
}
