package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Nom          string    `json:"nom"`
	Email        string    `json:"email"`
	Telephone    string    `json:"telephone"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CompagnieID  int64     `json:"compagnie_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type PublicUser struct {
	ID          int64  `json:"id"`
	Nom         string `json:"nom"`
	Email       string `json:"email"`
	Telephone   string `json:"telephone"`
	Admin       bool   `json:"admin"`
	CompagnieID int64  `json:"compagnie_id,omitempty"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Nom:         u.Nom,
		Email:       u.Email,
		Telephone:   u.Telephone,
		Admin:       u.Admin,
		CompagnieID: u.CompagnieID,
	}
}
