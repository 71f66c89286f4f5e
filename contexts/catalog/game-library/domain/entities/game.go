package entities

import "time"

type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
)

// Game is a catalog entry. Name is canonical and owned by the name-voting
// resolver after creation; Slug is derived once from the creation name and
// never regenerated, so links survive renames.
type Game struct {
	GameID        string
	Name          string
	Slug          string
	Description   string
	DurationID    string
	PlayerCountID string
	TagIDs        []string
	Status        RecordStatus
	AddedUser     string
	DateAdded     time.Time
	ModifiedUser  string
	DateModified  *time.Time
	DeletedUser   string
	DateDeleted   *time.Time
}

func (g Game) Live() bool {
	return g.Status == StatusActive
}

type Tag struct {
	TagID        string
	Name         string
	Description  string
	Status       RecordStatus
	AddedUser    string
	DateAdded    time.Time
	ModifiedUser string
	DateModified *time.Time
	DeletedUser  string
	DateDeleted  *time.Time
}

func (t Tag) Live() bool {
	return t.Status == StatusActive
}

type MetadataType string

const (
	MetadataDuration    MetadataType = "duration"
	MetadataPlayerCount MetadataType = "playerCount"
)

// GameMetadata is a named range bucket, e.g. "10-20 minutes" or "4+ players".
type GameMetadata struct {
	MetadataID   string
	Name         string
	Type         MetadataType
	Min          int
	Max          int
	Status       RecordStatus
	AddedUser    string
	DateAdded    time.Time
	ModifiedUser string
	DateModified *time.Time
	DeletedUser  string
	DateDeleted  *time.Time
}

func (m GameMetadata) Live() bool {
	return m.Status == StatusActive
}

type NoteParentType string

const (
	NoteParentGame     NoteParentType = "game"
	NoteParentTag      NoteParentType = "tag"
	NoteParentMetadata NoteParentType = "metadata"
)

// Note is free-form text attached to a game, a tag, or a metadata bucket.
// Only public notes surface on read paths.
type Note struct {
	NoteID       string
	ParentType   NoteParentType
	ParentID     string
	Text         string
	Public       bool
	Status       RecordStatus
	AddedUser    string
	DateAdded    time.Time
	ModifiedUser string
	DateModified *time.Time
	DeletedUser  string
	DateDeleted  *time.Time
}

func (n Note) Live() bool {
	return n.Status == StatusActive
}
