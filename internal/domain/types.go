package domain

// ID is used across domain entities.
type ID int64

// Status represents a lightweight state value.
type Status string

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID      ID     `json:"userId"`
	Admin       bool   `json:"admin"`
	CompagnieID ID     `json:"compagnieId,omitempty"`
	Email       string `json:"email,omitempty"`
}
