package model

import (
	"time"
)

// PortalCredential gates link-shared access to a project. The password is
// persisted twice: a bcrypt hash for verification and a reversibly encrypted
// copy so the owner can re-share the original without a reset flow. Both
// fields always derive from the same plaintext and are rewritten together.
type PortalCredential struct {
	ProjectID         string     `db:"project_id" json:"projectId"`
	Slug              string     `db:"slug" json:"slug"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	PasswordEncrypted string     `db:"password_encrypted" json:"-"`
	Enabled           bool       `db:"enabled" json:"enabled"`
	RotatedAt         *time.Time `db:"rotated_at" json:"rotatedAt,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
}

type UpsertPortalCredentialParams struct {
	ProjectID         string
	Slug              string
	PasswordHash      string
	PasswordEncrypted string
}

// PortalSession is the opaque server-side record behind a portal visitor's
// cookie. The cookie carries the raw id, never a self-contained token, so
// disabling a portal revokes every outstanding session on the next lookup.
type PortalSession struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"projectId"`
	VisitorName string    `db:"visitor_name" json:"visitorName"`
	IPAddress   *string   `db:"ip_address" json:"-"`
	UserAgent   *string   `db:"user_agent" json:"-"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type CreatePortalSessionParams struct {
	ID          string
	ProjectID   string
	VisitorName string
	IPAddress   *string
	UserAgent   *string
	ExpiresAt   time.Time
}

func (s *PortalSession) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}
