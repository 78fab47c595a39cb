package layer

import "github.com/google/uuid"

// ID uniquely identifies a node for the lifetime of a process.
type ID = uuid.UUID

// NilID is the zero ID. No node ever carries it.
var NilID = uuid.Nil

// newID returns a fresh random node ID.
func newID() ID {
	return uuid.New()
}

// ParseID parses the string form of an ID.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}
