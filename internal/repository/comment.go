package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/model"
)

type CommentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	ListByProjectID(ctx context.Context, projectID string) ([]model.Comment, error)
	Create(ctx context.Context, params model.CreateCommentParams) (*model.Comment, error)
	UpdateBody(ctx context.Context, id, body string) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepo struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, `SELECT * FROM comments WHERE id = $1`, id)
	return HandleNotFound(&comment, err)
}

func (r *commentRepo) ListByProjectID(ctx context.Context, projectID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, `
		SELECT * FROM comments WHERE project_id = $1 ORDER BY created_at ASC
	`, projectID)
	return comments, err
}

func (r *commentRepo) Create(ctx context.Context, params model.CreateCommentParams) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, `
		INSERT INTO comments (id, project_id, markup_id, message_id, body, author_user_id, author_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, uuid.NewString(), params.ProjectID, params.MarkupID, params.MessageID, params.Body,
		params.AuthorUserID, params.AuthorName)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepo) UpdateBody(ctx context.Context, id, body string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, `
		UPDATE comments SET body = $2, updated_at = NOW() WHERE id = $1
		RETURNING *
	`, id, body)
	return HandleNotFound(&comment, err)
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}
