package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/model"
)

type MessageRepository interface {
	FindByID(ctx context.Context, id string) (*model.Message, error)
	ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]model.Message, error)
	CountByProjectID(ctx context.Context, projectID string) (int, error)
	Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error)
	UpdateBody(ctx context.Context, id, body string) (*model.Message, error)
	Delete(ctx context.Context, id string) error
}

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `SELECT * FROM messages WHERE id = $1`, id)
	return HandleNotFound(&msg, err)
}

func (r *messageRepo) ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT * FROM messages
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, projectID, limit, offset)
	return msgs, err
}

func (r *messageRepo) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE project_id = $1`, projectID)
	return count, err
}

func (r *messageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO messages (id, project_id, body, author_user_id, author_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, uuid.NewString(), params.ProjectID, params.Body, params.AuthorUserID, params.AuthorName)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) UpdateBody(ctx context.Context, id, body string) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		UPDATE messages SET body = $2, updated_at = NOW() WHERE id = $1
		RETURNING *
	`, id, body)
	return HandleNotFound(&msg, err)
}

func (r *messageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}
