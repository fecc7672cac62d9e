package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/clientlane/crm-server-go/internal/database"
	"github.com/clientlane/crm-server-go/internal/model"
)

type PortalCredentialRepository interface {
	FindByProjectID(ctx context.Context, projectID string) (*model.PortalCredential, error)
	FindBySlug(ctx context.Context, slug string) (*model.PortalCredential, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Upsert(ctx context.Context, q database.DBTX, params model.UpsertPortalCredentialParams) (*model.PortalCredential, error)
	SetEnabled(ctx context.Context, q database.DBTX, projectID string, enabled bool) error
}

type portalCredentialRepo struct {
	db *sqlx.DB
}

func NewPortalCredentialRepository(db *sqlx.DB) PortalCredentialRepository {
	return &portalCredentialRepo{db: db}
}

func (r *portalCredentialRepo) FindByProjectID(ctx context.Context, projectID string) (*model.PortalCredential, error) {
	var cred model.PortalCredential
	err := r.db.GetContext(ctx, &cred, `SELECT * FROM portal_credentials WHERE project_id = $1`, projectID)
	return HandleNotFound(&cred, err)
}

func (r *portalCredentialRepo) FindBySlug(ctx context.Context, slug string) (*model.PortalCredential, error) {
	var cred model.PortalCredential
	err := r.db.GetContext(ctx, &cred, `SELECT * FROM portal_credentials WHERE slug = $1`, slug)
	return HandleNotFound(&cred, err)
}

func (r *portalCredentialRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM portal_credentials WHERE slug = $1)
	`, slug)
	return exists, err
}

// Upsert writes the hash and the encrypted copy in one statement. Callers
// pass a transaction so the write shares fate with the project flag flip;
// verify and reveal must never observe values derived from different
// plaintexts.
func (r *portalCredentialRepo) Upsert(ctx context.Context, q database.DBTX, params model.UpsertPortalCredentialParams) (*model.PortalCredential, error) {
	var cred model.PortalCredential
	row := q.QueryRowContext(ctx, `
		INSERT INTO portal_credentials (project_id, slug, password_hash, password_encrypted, enabled)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (project_id) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    password_encrypted = EXCLUDED.password_encrypted,
		    enabled = TRUE,
		    rotated_at = NOW()
		RETURNING project_id, slug, password_hash, password_encrypted, enabled, rotated_at, created_at
	`, params.ProjectID, params.Slug, params.PasswordHash, params.PasswordEncrypted)
	err := row.Scan(
		&cred.ProjectID, &cred.Slug, &cred.PasswordHash, &cred.PasswordEncrypted,
		&cred.Enabled, &cred.RotatedAt, &cred.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *portalCredentialRepo) SetEnabled(ctx context.Context, q database.DBTX, projectID string, enabled bool) error {
	_, err := q.ExecContext(ctx, `
		UPDATE portal_credentials SET enabled = $2 WHERE project_id = $1
	`, projectID, enabled)
	return err
}
