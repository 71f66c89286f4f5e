package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	NameID string `json:"name_id"`
}

type AddNameRequest struct {
	Name string `json:"name"`
}

type VoteResponse struct {
	Effect         string `json:"effect"`
	NameID         string `json:"name_id,omitempty"`
	Renamed        bool   `json:"renamed"`
	CanonicalName  string `json:"canonical_name,omitempty"`
	CanonicalStale bool   `json:"canonical_stale,omitempty"`
}

type NameItem struct {
	NameID    string    `json:"name_id"`
	Name      string    `json:"name"`
	Weight    int       `json:"weight"`
	Canonical bool      `json:"canonical"`
	AddedUser string    `json:"added_user"`
	DateAdded time.Time `json:"date_added"`
}

type NameListResponse struct {
	GameID string     `json:"game_id"`
	Items  []NameItem `json:"items"`
}

type MyVoteItem struct {
	VoteID    string    `json:"vote_id"`
	NameID    string    `json:"name_id"`
	DateAdded time.Time `json:"date_added"`
}

type MyVotesResponse struct {
	GameID string       `json:"game_id"`
	Items  []MyVoteItem `json:"items"`
}

type TallyItem struct {
	NameID      string `json:"name_id"`
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	ActiveVotes int    `json:"active_votes"`
	Consistent  bool   `json:"consistent"`
}

type TallyResponse struct {
	GameID string      `json:"game_id"`
	Items  []TallyItem `json:"items"`
}

type RebuildCanonicalResponse struct {
	GameID        string `json:"game_id"`
	CanonicalName string `json:"canonical_name"`
	Renamed       bool   `json:"renamed"`
}
