package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UserResponse struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Company      string    `json:"company,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	URL          string    `json:"url,omitempty"`
	Title        string    `json:"title,omitempty"`
	Locked       bool      `json:"locked"`
	SuperAdmin   bool      `json:"super_admin"`
	DateLoggedIn time.Time `json:"date_logged_in"`
}

type LockRequest struct {
	Locked bool `json:"locked"`
}
