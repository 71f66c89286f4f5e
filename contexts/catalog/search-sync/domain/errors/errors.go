package errors

import "errors"

var (
	ErrUnknownIndex    = errors.New("unknown search index")
	ErrInvalidQuery    = errors.New("invalid search query")
	ErrOrphanReference = errors.New("record references a missing parent")
)
