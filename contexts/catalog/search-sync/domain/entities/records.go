package entities

const (
	TagIndex  = "tags"
	GameIndex = "games"
)

// Record is the flat document shape both indices accept. Tag records fill
// TagID; game records fill GameID, GameSlug, NameID and KeyTag. ObjectID is
// the upsert/delete key: the tag id for tag records, the name id for game
// records (one searchable entry per proposed name).
type Record struct {
	ObjectID string `json:"objectID"`
	Name     string `json:"name"`
	TagID    string `json:"tagId,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	GameSlug string `json:"gameSlug,omitempty"`
	NameID   string `json:"nameId,omitempty"`
	KeyTag   string `json:"keyTag,omitempty"`
}

func NewTagRecord(tagID string, name string) Record {
	return Record{
		ObjectID: tagID,
		TagID:    tagID,
		Name:     name,
	}
}

func NewGameRecord(gameID string, gameSlug string, nameID string, name string, keyTag string) Record {
	return Record{
		ObjectID: nameID,
		Name:     name,
		GameID:   gameID,
		GameSlug: gameSlug,
		NameID:   nameID,
		KeyTag:   keyTag,
	}
}

// KeyTagConfig holds the three well-known tag ids whose presence classifies
// a game for search facets.
type KeyTagConfig struct {
	ShowTagID     string
	ExerciseTagID string
	WarmupTagID   string
}

// KeyTagFor classifies a game's tag set with fixed precedence: show beats
// exercise beats warmup; anything else yields the empty key tag.
func (c KeyTagConfig) KeyTagFor(tagIDs []string) string {
	has := func(wanted string) bool {
		if wanted == "" {
			return false
		}
		for _, id := range tagIDs {
			if id == wanted {
				return true
			}
		}
		return false
	}
	switch {
	case has(c.ShowTagID):
		return "Show"
	case has(c.ExerciseTagID):
		return "Exercise"
	case has(c.WarmupTagID):
		return "Warmup"
	default:
		return ""
	}
}
