package events

import (
	"encoding/json"
	"time"
)

// DocumentEvent is the shared change-event shape carried between the catalog
// writers and the search-sync consumers. It mirrors a document trigger:
// create events carry only After, update events carry Before and After so
// consumers can act on state transitions rather than on raw updates.
type DocumentEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Collection string          `json:"collection"`
	DocumentID string          `json:"document_id"`
	GameID     string          `json:"game_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Event types published by the catalog contexts.
const (
	TypeTagCreated  = "tag.created"
	TypeTagUpdated  = "tag.updated"
	TypeNameCreated = "name.created"
	TypeNameUpdated = "name.updated"
)

// TagState is the projection of a tag document carried in tag events.
type TagState struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// NameState is the projection of a name document carried in name events.
type NameState struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}
