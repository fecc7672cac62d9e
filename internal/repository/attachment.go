package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/model"
)

type AttachmentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Attachment, error)
	ListByProjectID(ctx context.Context, projectID string) ([]model.Attachment, error)
	Create(ctx context.Context, params model.CreateAttachmentParams) (*model.Attachment, error)
	Delete(ctx context.Context, id string) error
}

type attachmentRepo struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	var att model.Attachment
	err := r.db.GetContext(ctx, &att, `SELECT * FROM attachments WHERE id = $1`, id)
	return HandleNotFound(&att, err)
}

func (r *attachmentRepo) ListByProjectID(ctx context.Context, projectID string) ([]model.Attachment, error) {
	var atts []model.Attachment
	err := r.db.SelectContext(ctx, &atts, `
		SELECT * FROM attachments WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	return atts, err
}

func (r *attachmentRepo) Create(ctx context.Context, params model.CreateAttachmentParams) (*model.Attachment, error) {
	var att model.Attachment
	err := r.db.GetContext(ctx, &att, `
		INSERT INTO attachments (id, project_id, message_id, filename, mime_type, size_bytes, author_user_id, author_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	`, uuid.NewString(), params.ProjectID, params.MessageID, params.Filename, params.MimeType,
		params.SizeBytes, params.AuthorUserID, params.AuthorName)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
