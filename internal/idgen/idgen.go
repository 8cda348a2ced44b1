package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers; tests may swap it for a deterministic source.
var NewFunc = uuid.NewString

// New returns a new random identifier.
func New() string { return NewFunc() }
