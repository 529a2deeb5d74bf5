package project

import "errors"

// ErrProjectNotFound is returned when an identifier is a symbolic project
// name that is not in the registry. A nonexistent *path* is never this
// error: missing paths are a creation trigger, not a failure.
var ErrProjectNotFound = errors.New("project not found")

// ErrNotADirectory is returned when the resolved project root exists but is
// a regular file.
var ErrNotADirectory = errors.New("project root is not a directory")

// ErrMemoryNotFound is returned when reading or deleting a memory that does
// not exist.
var ErrMemoryNotFound = errors.New("memory not found")
