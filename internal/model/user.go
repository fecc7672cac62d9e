package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
}

// RedactedProfile is the subset of User exposed in the non-httpOnly
// profile cookie so the frontend can render the signed-in state.
type RedactedProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u *User) Redacted() RedactedProfile {
	return RedactedProfile{ID: u.ID, Email: u.Email, Name: u.Name}
}
