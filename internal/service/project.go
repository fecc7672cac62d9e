package service

import (
	"context"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/repository"
)

// ProjectService covers the owner-side project surface the portal core
// hangs off: creation, listing, and the ownership check every owner
// endpoint performs before touching portal credentials.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	clientRepo  repository.ClientRepository
}

func NewProjectService(projectRepo repository.ProjectRepository, clientRepo repository.ClientRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, clientRepo: clientRepo}
}

func (s *ProjectService) Create(ctx context.Context, userID, name string, clientID *string) (*model.Project, error) {
	if name == "" {
		return nil, apperrors.MissingRequired("name")
	}

	if clientID != nil {
		client, err := s.clientRepo.FindByID(ctx, *clientID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if client == nil || client.UserID != userID {
			return nil, apperrors.NotFound("Client")
		}
	}

	project, err := s.projectRepo.Create(ctx, model.CreateProjectParams{
		UserID:   userID,
		ClientID: clientID,
		Name:     name,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]model.Project, error) {
	projects, err := s.projectRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// GetOwned loads a project and verifies ownership. Non-owners get
// FORBIDDEN, which is deliberately distinguishable from NOT_FOUND on the
// owner-facing surface.
func (s *ProjectService) GetOwned(ctx context.Context, userID, projectID string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if project == nil {
		return nil, apperrors.NotFound("Project")
	}
	if project.UserID != userID {
		return nil, apperrors.Forbidden("You do not own this project")
	}
	return project, nil
}

func (s *ProjectService) CreateClient(ctx context.Context, userID, name string, email *string) (*model.Client, error) {
	if name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	client, err := s.clientRepo.Create(ctx, userID, name, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return client, nil
}

func (s *ProjectService) ListClients(ctx context.Context, userID string) ([]model.Client, error) {
	clients, err := s.clientRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if clients == nil {
		clients = []model.Client{}
	}
	return clients, nil
}
