package entities

import "time"

type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
)

type User struct {
	UserID       string
	Email        string
	Name         string
	FirstName    string
	LastName     string
	Company      string
	City         string
	State        string
	Country      string
	Phone        string
	URL          string
	Title        string
	Locked       bool
	SuperAdmin   bool
	DateLoggedIn time.Time
	Status       RecordStatus
	DateAdded    time.Time
	DateModified *time.Time
}

func (u User) Live() bool {
	return u.Status == StatusActive
}

// Claims is what the token adapter extracts from a verified bearer token.
type Claims struct {
	Subject string
	Email   string
	Name    string
}
