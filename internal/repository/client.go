package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/model"
)

type ClientRepository interface {
	FindByID(ctx context.Context, id string) (*model.Client, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Client, error)
	Create(ctx context.Context, userID, name string, email *string) (*model.Client, error)
}

type clientRepo struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) FindByID(ctx context.Context, id string) (*model.Client, error) {
	var client model.Client
	err := r.db.GetContext(ctx, &client, `SELECT * FROM clients WHERE id = $1`, id)
	return HandleNotFound(&client, err)
}

func (r *clientRepo) ListByUserID(ctx context.Context, userID string) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.SelectContext(ctx, &clients, `
		SELECT * FROM clients WHERE user_id = $1 ORDER BY name ASC
	`, userID)
	return clients, err
}

func (r *clientRepo) Create(ctx context.Context, userID, name string, email *string) (*model.Client, error) {
	var client model.Client
	err := r.db.GetContext(ctx, &client, `
		INSERT INTO clients (id, user_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, uuid.NewString(), userID, name, email)
	if err != nil {
		return nil, err
	}
	return &client, nil
}
