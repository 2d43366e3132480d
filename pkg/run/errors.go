package run

import "errors"

var (
	// ErrInvalidSelection indicates the requested tree, architecture or sets
	// don't fit the database.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInvalidVariables indicates template variable assignments are
	// malformed, unknown, or missing.
	ErrInvalidVariables = errors.New("invalid variables")
	// ErrTemplate indicates a job template could not be loaded or rendered.
	ErrTemplate = errors.New("template error")
)
