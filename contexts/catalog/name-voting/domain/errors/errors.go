package errors

import "errors"

var (
	ErrInvalidVoteInput    = errors.New("invalid vote input")
	ErrGameNotFound        = errors.New("game not found")
	ErrNameNotFound        = errors.New("name not found")
	ErrNameDeleted         = errors.New("name is deleted")
	ErrVoteNotFound        = errors.New("vote not found")
	ErrNoNames             = errors.New("game has no live names")
	ErrLastName            = errors.New("game must retain at least one live name")
	ErrTransactionConflict = errors.New("store transaction could not commit")
	ErrOrphanReference     = errors.New("record references a missing parent")
	ErrDuplicateActiveVote = errors.New("user has more than one active vote")
)
