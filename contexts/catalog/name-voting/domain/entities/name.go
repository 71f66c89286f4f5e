package entities

import "time"

// RecordStatus is the explicit lifecycle state of names and votes. Records
// are never hard-deleted; the audit trail survives every transition.
type RecordStatus string

const (
	StatusActive    RecordStatus = "active"
	StatusRetracted RecordStatus = "retracted"
	StatusDeleted   RecordStatus = "deleted"
)

// Name is one proposed name for a game. Weight is a denormalized counter
// equal to the number of active votes referencing the name.
type Name struct {
	NameID       string
	GameID       string
	Text         string
	Weight       int
	Status       RecordStatus
	AddedUser    string
	DateAdded    time.Time
	ModifiedUser string
	DateModified *time.Time
	DeletedUser  string
	DateDeleted  *time.Time
}

func (n Name) Live() bool {
	return n.Status == StatusActive
}

// NameVote is a single user's endorsement of one name within one game.
// Retraction flips Status; the row stays behind as history.
type NameVote struct {
	VoteID      string
	GameID      string
	NameID      string
	AddedUser   string
	Status      RecordStatus
	DateAdded   time.Time
	DeletedUser string
	DateDeleted *time.Time
}

func (v NameVote) Live() bool {
	return v.Status == StatusActive
}

// VoteEffect reports what a ledger operation did, so callers can phrase the
// outcome ("your vote renamed the game") without re-deriving state.
type VoteEffect string

const (
	VoteEffectUnknown VoteEffect = "unknown"
	VoteEffectError   VoteEffect = "error"
	VoteEffectMade    VoteEffect = "made"
	VoteEffectChanged VoteEffect = "changed"
	VoteEffectRemoved VoteEffect = "removed"
	VoteEffectRename  VoteEffect = "rename"
)

// GameHeader is the projection of the owning game this module reads and
// writes: the canonical name plus enough to detect a deleted parent.
type GameHeader struct {
	GameID  string
	Name    string
	Slug    string
	Deleted bool
}

// NameTally pairs a name's stored weight with its live vote count.
type NameTally struct {
	NameID      string
	Text        string
	Weight      int
	ActiveVotes int
}

// Consistent reports whether the denormalized weight matches the ledger.
func (t NameTally) Consistent() bool {
	return t.Weight == t.ActiveVotes
}
