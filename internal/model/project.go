package model

import (
	"time"
)

type Client struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Project struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	ClientID      *string   `db:"client_id" json:"clientId,omitempty"`
	Name          string    `db:"name" json:"name"`
	PortalEnabled bool      `db:"portal_enabled" json:"portalEnabled"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateProjectParams struct {
	UserID   string
	ClientID *string
	Name     string
}
