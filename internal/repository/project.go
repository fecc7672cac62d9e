package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/database"
	"github.com/clientlane/crm-server-go/internal/model"
)

type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (*model.Project, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Project, error)
	Create(ctx context.Context, params model.CreateProjectParams) (*model.Project, error)
	SetPortalEnabled(ctx context.Context, q database.DBTX, id string, enabled bool) error
}

type projectRepo struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1`, id)
	return HandleNotFound(&project, err)
}

func (r *projectRepo) ListByUserID(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.SelectContext(ctx, &projects, `
		SELECT * FROM projects WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	return projects, err
}

func (r *projectRepo) Create(ctx context.Context, params model.CreateProjectParams) (*model.Project, error) {
	var project model.Project
	err := r.db.GetContext(ctx, &project, `
		INSERT INTO projects (id, user_id, client_id, name, portal_enabled)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING *
	`, uuid.NewString(), params.UserID, params.ClientID, params.Name)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SetPortalEnabled accepts a DBTX so the flag flip can share a transaction
// with the credential write when a portal is first enabled.
func (r *projectRepo) SetPortalEnabled(ctx context.Context, q database.DBTX, id string, enabled bool) error {
	_, err := q.ExecContext(ctx, `
		UPDATE projects SET portal_enabled = $2, updated_at = NOW() WHERE id = $1
	`, id, enabled)
	return err
}
