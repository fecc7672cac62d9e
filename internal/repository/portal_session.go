package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/model"
)

type PortalSessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.PortalSession, error)
	Create(ctx context.Context, params model.CreatePortalSessionParams) (*model.PortalSession, error)
	Delete(ctx context.Context, id string) error
	DeleteByProjectID(ctx context.Context, projectID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type portalSessionRepo struct {
	db *sqlx.DB
}

func NewPortalSessionRepository(db *sqlx.DB) PortalSessionRepository {
	return &portalSessionRepo{db: db}
}

// FindByID filters expired rows in SQL; expiry is enforced lazily at read
// time, the cleanup job only reclaims storage.
func (r *portalSessionRepo) FindByID(ctx context.Context, id string) (*model.PortalSession, error) {
	var session model.PortalSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM portal_sessions
		WHERE id = $1 AND expires_at > NOW()
	`, id)
	return HandleNotFound(&session, err)
}

func (r *portalSessionRepo) Create(ctx context.Context, params model.CreatePortalSessionParams) (*model.PortalSession, error) {
	var session model.PortalSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO portal_sessions (id, project_id, visitor_name, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.ProjectID, params.VisitorName, params.IPAddress, params.UserAgent, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *portalSessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id)
	return err
}

func (r *portalSessionRepo) DeleteByProjectID(ctx context.Context, projectID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM portal_sessions WHERE project_id = $1`, projectID)
	return err
}

func (r *portalSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM portal_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
