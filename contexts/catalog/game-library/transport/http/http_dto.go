package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateGameRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	DurationID    string   `json:"duration_id,omitempty"`
	PlayerCountID string   `json:"player_count_id,omitempty"`
	TagIDs        []string `json:"tag_ids,omitempty"`
}

type GameResponse struct {
	GameID        string    `json:"game_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	DurationID    string    `json:"duration_id,omitempty"`
	PlayerCountID string    `json:"player_count_id,omitempty"`
	TagIDs        []string  `json:"tag_ids,omitempty"`
	AddedUser     string    `json:"added_user"`
	DateAdded     time.Time `json:"date_added"`
}

type GameListResponse struct {
	Items  []GameResponse `json:"items"`
	Cursor string         `json:"cursor,omitempty"`
}

type CreateTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type TagResponse struct {
	TagID       string `json:"tag_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type TagListResponse struct {
	Items []TagResponse `json:"items"`
}

type CreateMetadataRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

type MetadataResponse struct {
	MetadataID string `json:"metadata_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Min        int    `json:"min"`
	Max        int    `json:"max"`
}

type MetadataListResponse struct {
	Items []MetadataResponse `json:"items"`
}

type AddNoteRequest struct {
	ParentType string `json:"parent_type"`
	ParentID   string `json:"parent_id"`
	Text       string `json:"text"`
	Public     bool   `json:"public"`
}

type NoteResponse struct {
	NoteID     string    `json:"note_id"`
	ParentType string    `json:"parent_type"`
	ParentID   string    `json:"parent_id"`
	Text       string    `json:"text"`
	Public     bool      `json:"public"`
	AddedUser  string    `json:"added_user"`
	DateAdded  time.Time `json:"date_added"`
}

type NoteListResponse struct {
	Items []NoteResponse `json:"items"`
}
