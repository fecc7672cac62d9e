package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/model"
)

type MarkupRepository interface {
	FindByID(ctx context.Context, id string) (*model.Markup, error)
	ListByAttachmentID(ctx context.Context, attachmentID string) ([]model.Markup, error)
	Create(ctx context.Context, params model.CreateMarkupParams) (*model.Markup, error)
	UpdatePath(ctx context.Context, id string, path json.RawMessage) (*model.Markup, error)
	Delete(ctx context.Context, id string) error
}

type markupRepo struct {
	db *sqlx.DB
}

func NewMarkupRepository(db *sqlx.DB) MarkupRepository {
	return &markupRepo{db: db}
}

func (r *markupRepo) FindByID(ctx context.Context, id string) (*model.Markup, error) {
	var markup model.Markup
	err := r.db.GetContext(ctx, &markup, `SELECT * FROM markups WHERE id = $1`, id)
	return HandleNotFound(&markup, err)
}

func (r *markupRepo) ListByAttachmentID(ctx context.Context, attachmentID string) ([]model.Markup, error) {
	var markups []model.Markup
	err := r.db.SelectContext(ctx, &markups, `
		SELECT * FROM markups WHERE attachment_id = $1 ORDER BY created_at ASC
	`, attachmentID)
	return markups, err
}

func (r *markupRepo) Create(ctx context.Context, params model.CreateMarkupParams) (*model.Markup, error) {
	var markup model.Markup
	err := r.db.GetContext(ctx, &markup, `
		INSERT INTO markups (id, project_id, attachment_id, path, author_user_id, author_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, uuid.NewString(), params.ProjectID, params.AttachmentID, params.Path,
		params.AuthorUserID, params.AuthorName)
	if err != nil {
		return nil, err
	}
	return &markup, nil
}

func (r *markupRepo) UpdatePath(ctx context.Context, id string, path json.RawMessage) (*model.Markup, error) {
	var markup model.Markup
	err := r.db.GetContext(ctx, &markup, `
		UPDATE markups SET path = $2, updated_at = NOW() WHERE id = $1
		RETURNING *
	`, id, path)
	return HandleNotFound(&markup, err)
}

func (r *markupRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM markups WHERE id = $1`, id)
	return err
}
