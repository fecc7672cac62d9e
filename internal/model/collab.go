package model

import (
	"encoding/json"
	"time"
)

type ResourceKind string

const (
	ResourceMessage    ResourceKind = "message"
	ResourceAttachment ResourceKind = "attachment"
	ResourceMarkup     ResourceKind = "markup"
	ResourceComment    ResourceKind = "comment"
)

// Authorship marks who created a collaboration resource. Exactly one of the
// two fields is set: a durable user id for platform users, a free-text
// display name for portal visitors.
type Authorship struct {
	AuthorUserID *string `db:"author_user_id" json:"authorUserId,omitempty"`
	AuthorName   *string `db:"author_name" json:"authorName,omitempty"`
}

type Message struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"projectId"`
	Body      string    `db:"body" json:"body"`
	Authorship
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Attachment struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"projectId"`
	MessageID *string   `db:"message_id" json:"messageId,omitempty"`
	Filename  string    `db:"filename" json:"filename"`
	MimeType  string    `db:"mime_type" json:"mimeType"`
	SizeBytes int64     `db:"size_bytes" json:"sizeBytes"`
	Authorship
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Markup is a freehand annotation drawn over an attachment. Path holds the
// raw stroke data as produced by the drawing surface.
type Markup struct {
	ID           string          `db:"id" json:"id"`
	ProjectID    string          `db:"project_id" json:"projectId"`
	AttachmentID string          `db:"attachment_id" json:"attachmentId"`
	Path         json.RawMessage `db:"path" json:"path"`
	Authorship
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Comment struct {
	ID        string  `db:"id" json:"id"`
	ProjectID string  `db:"project_id" json:"projectId"`
	MarkupID  *string `db:"markup_id" json:"markupId,omitempty"`
	MessageID *string `db:"message_id" json:"messageId,omitempty"`
	Body      string  `db:"body" json:"body"`
	Authorship
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateMessageParams struct {
	ProjectID string
	Body      string
	Authorship
}

type CreateAttachmentParams struct {
	ProjectID string
	MessageID *string
	Filename  string
	MimeType  string
	SizeBytes int64
	Authorship
}

type CreateMarkupParams struct {
	ProjectID    string
	AttachmentID string
	Path         json.RawMessage
	Authorship
}

type CreateCommentParams struct {
	ProjectID string
	MarkupID  *string
	MessageID *string
	Body      string
	Authorship
}
