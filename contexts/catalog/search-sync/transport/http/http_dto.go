package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RebuildResponse struct {
	TagRecords  int `json:"tag_records"`
	GameRecords int `json:"game_records"`
}

type SearchHit struct {
	ObjectID string `json:"objectID"`
	Name     string `json:"name"`
	TagID    string `json:"tagId,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	GameSlug string `json:"gameSlug,omitempty"`
	NameID   string `json:"nameId,omitempty"`
	KeyTag   string `json:"keyTag,omitempty"`
}

type SearchResponse struct {
	Index string      `json:"index"`
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}
