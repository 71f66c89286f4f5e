package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid catalog input")
	ErrGameNotFound        = errors.New("game not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrMetadataNotFound    = errors.New("metadata not found")
	ErrNoteNotFound        = errors.New("note not found")
	ErrSlugConflict        = errors.New("name or slug already in use")
	ErrTransactionConflict = errors.New("store transaction could not commit")
)
