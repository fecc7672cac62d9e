package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/repository"
)

// CollaborationService is the single entry point for reads and mutations on
// a project's shared collaboration surface. Every operation takes the
// caller's resolved identity, runs it through the access gate, and only
// then touches the store.
type CollaborationService struct {
	projectRepo    repository.ProjectRepository
	messageRepo    repository.MessageRepository
	commentRepo    repository.CommentRepository
	markupRepo     repository.MarkupRepository
	attachmentRepo repository.AttachmentRepository
}

func NewCollaborationService(
	projectRepo repository.ProjectRepository,
	messageRepo repository.MessageRepository,
	commentRepo repository.CommentRepository,
	markupRepo repository.MarkupRepository,
	attachmentRepo repository.AttachmentRepository,
) *CollaborationService {
	return &CollaborationService{
		projectRepo:    projectRepo,
		messageRepo:    messageRepo,
		commentRepo:    commentRepo,
		markupRepo:     markupRepo,
		attachmentRepo: attachmentRepo,
	}
}

// loadProject fetches the project and shapes the missing case by principal:
// owners can learn a project does not exist, everyone else gets the generic
// denial.
func (s *CollaborationService) loadProject(ctx context.Context, rc model.ResolvedContext, projectID string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if project == nil {
		if rc.IsUser() {
			return nil, apperrors.NotFound("Project")
		}
		return nil, apperrors.Unauthorized("Not authorized")
	}
	return project, nil
}

func (s *CollaborationService) authorize(project *model.Project, rc model.ResolvedContext, kind model.ResourceKind, op Operation, authorship *model.Authorship) error {
	return Authorize(rc, Action{
		Resource:       kind,
		Operation:      op,
		ProjectID:      project.ID,
		ProjectOwnerID: project.UserID,
		Authorship:     authorship,
	})
}

// Messages

type MessagePage struct {
	Messages []model.Message
	Total    int
	HasMore  bool
}

func (s *CollaborationService) ListMessages(ctx context.Context, rc model.ResolvedContext, projectID string, limit, offset int) (*MessagePage, error) {
	project, err := s.loadProject(ctx, rc, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceMessage, OpRead, nil); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByProjectID(ctx, projectID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	total, err := s.messageRepo.CountByProjectID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if messages == nil {
		messages = []model.Message{}
	}

	return &MessagePage{
		Messages: messages,
		Total:    total,
		HasMore:  offset+len(messages) < total,
	}, nil
}

func (s *CollaborationService) CreateMessage(ctx context.Context, rc model.ResolvedContext, projectID, body string) (*model.Message, error) {
	if body == "" {
		return nil, apperrors.MissingRequired("body")
	}

	project, err := s.loadProject(ctx, rc, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceMessage, OpCreate, nil); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.Create(ctx, model.CreateMessageParams{
		ProjectID:  projectID,
		Body:       body,
		Authorship: AuthorshipFor(rc),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return msg, nil
}

func (s *CollaborationService) UpdateMessage(ctx context.Context, rc model.ResolvedContext, messageID, body string) (*model.Message, error) {
	if body == "" {
		return nil, apperrors.MissingRequired("body")
	}

	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if msg == nil {
		return nil, s.missing(rc, "Message")
	}

	project, err := s.loadProject(ctx, rc, msg.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceMessage, OpUpdate, &msg.Authorship); err != nil {
		return nil, err
	}

	msg, err = s.messageRepo.UpdateBody(ctx, messageID, body)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return msg, nil
}

func (s *CollaborationService) DeleteMessage(ctx context.Context, rc model.ResolvedContext, messageID string) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return apperrors.Database(err)
	}
	if msg == nil {
		return s.missing(rc, "Message")
	}

	project, err := s.loadProject(ctx, rc, msg.ProjectID)
	if err != nil {
		return err
	}
	if err := s.authorize(project, rc, model.ResourceMessage, OpDelete, &msg.Authorship); err != nil {
		return err
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Comments

func (s *CollaborationService) ListComments(ctx context.Context, rc model.ResolvedContext, projectID string) ([]model.Comment, error) {
	project, err := s.loadProject(ctx, rc, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceComment, OpRead, nil); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

func (s *CollaborationService) CreateComment(ctx context.Context, rc model.ResolvedContext, projectID string, markupID, messageID *string, body string) (*model.Comment, error) {
	if body == "" {
		return nil, apperrors.MissingRequired("body")
	}

	project, err := s.loadProject(ctx, rc, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceComment, OpCreate, nil); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.Create(ctx, model.CreateCommentParams{
		ProjectID:  projectID,
		MarkupID:   markupID,
		MessageID:  messageID,
		Body:       body,
		Authorship: AuthorshipFor(rc),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return comment, nil
}

func (s *CollaborationService) UpdateComment(ctx context.Context, rc model.ResolvedContext, commentID, body string) (*model.Comment, error) {
	if body == "" {
		return nil, apperrors.MissingRequired("body")
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if comment == nil {
		return nil, s.missing(rc, "Comment")
	}

	project, err := s.loadProject(ctx, rc, comment.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceComment, OpUpdate, &comment.Authorship); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.UpdateBody(ctx, commentID, body)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return comment, nil
}

func (s *CollaborationService) DeleteComment(ctx context.Context, rc model.ResolvedContext, commentID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return apperrors.Database(err)
	}
	if comment == nil {
		return s.missing(rc, "Comment")
	}

	project, err := s.loadProject(ctx, rc, comment.ProjectID)
	if err != nil {
		return err
	}
	if err := s.authorize(project, rc, model.ResourceComment, OpDelete, &comment.Authorship); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Markups

func (s *CollaborationService) ListMarkups(ctx context.Context, rc model.ResolvedContext, attachmentID string) ([]model.Markup, error) {
	att, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if att == nil {
		return nil, s.missing(rc, "Attachment")
	}

	project, err := s.loadProject(ctx, rc, att.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceMarkup, OpRead, nil); err != nil {
		return nil, err
	}

	markups, err := s.markupRepo.ListByAttachmentID(ctx, attachmentID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if markups == nil {
		markups = []model.Markup{}
	}
	return markups, nil
}

func (s *CollaborationService) CreateMarkup(ctx context.Context, rc model.ResolvedContext, attachmentID string, path json.RawMessage) (*model.Markup, error) {
	if len(path) == 0 {
		return nil, apperrors.MissingRequired("path")
	}

	att, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if att == nil {
		return nil, s.missing(rc, "Attachment")
	}

	project, err := s.loadProject(ctx, rc, att.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceMarkup, OpCreate, nil); err != nil {
		return nil, err
	}

	markup, err := s.markupRepo.Create(ctx, model.CreateMarkupParams{
		ProjectID:    att.ProjectID,
		AttachmentID: attachmentID,
		Path:         path,
		Authorship:   AuthorshipFor(rc),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return markup, nil
}

func (s *CollaborationService) UpdateMarkup(ctx context.Context, rc model.ResolvedContext, markupID string, path json.RawMessage) (*model.Markup, error) {
	if len(path) == 0 {
		return nil, apperrors.MissingRequired("path")
	}

	markup, err := s.markupRepo.FindByID(ctx, markupID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if markup == nil {
		return nil, s.missing(rc, "Markup")
	}

	project, err := s.loadProject(ctx, rc, markup.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceMarkup, OpUpdate, &markup.Authorship); err != nil {
		return nil, err
	}

	markup, err = s.markupRepo.UpdatePath(ctx, markupID, path)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return markup, nil
}

func (s *CollaborationService) DeleteMarkup(ctx context.Context, rc model.ResolvedContext, markupID string) error {
	markup, err := s.markupRepo.FindByID(ctx, markupID)
	if err != nil {
		return apperrors.Database(err)
	}
	if markup == nil {
		return s.missing(rc, "Markup")
	}

	project, err := s.loadProject(ctx, rc, markup.ProjectID)
	if err != nil {
		return err
	}
	if err := s.authorize(project, rc, model.ResourceMarkup, OpDelete, &markup.Authorship); err != nil {
		return err
	}

	if err := s.markupRepo.Delete(ctx, markupID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Attachments

func (s *CollaborationService) ListAttachments(ctx context.Context, rc model.ResolvedContext, projectID string) ([]model.Attachment, error) {
	project, err := s.loadProject(ctx, rc, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceAttachment, OpRead, nil); err != nil {
		return nil, err
	}

	atts, err := s.attachmentRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if atts == nil {
		atts = []model.Attachment{}
	}
	return atts, nil
}

func (s *CollaborationService) CreateAttachment(ctx context.Context, rc model.ResolvedContext, projectID string, messageID *string, filename, mimeType string, sizeBytes int64) (*model.Attachment, error) {
	if filename == "" {
		return nil, apperrors.MissingRequired("filename")
	}

	project, err := s.loadProject(ctx, rc, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, rc, model.ResourceAttachment, OpCreate, nil); err != nil {
		return nil, err
	}

	att, err := s.attachmentRepo.Create(ctx, model.CreateAttachmentParams{
		ProjectID:  projectID,
		MessageID:  messageID,
		Filename:   filename,
		MimeType:   mimeType,
		SizeBytes:  sizeBytes,
		Authorship: AuthorshipFor(rc),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return att, nil
}

func (s *CollaborationService) DeleteAttachment(ctx context.Context, rc model.ResolvedContext, attachmentID string) error {
	att, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return apperrors.Database(err)
	}
	if att == nil {
		return s.missing(rc, "Attachment")
	}

	project, err := s.loadProject(ctx, rc, att.ProjectID)
	if err != nil {
		return err
	}
	if err := s.authorize(project, rc, model.ResourceAttachment, OpDelete, &att.Authorship); err != nil {
		return err
	}

	log.Info().Str("attachmentId", attachmentID).Msg("attachment deleted")
	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// missing shapes a not-found result: owners can distinguish absence from
// denial, portal visitors and anonymous callers cannot.
func (s *CollaborationService) missing(rc model.ResolvedContext, resource string) error {
	if rc.IsUser() {
		return apperrors.NotFound(resource)
	}
	return apperrors.Unauthorized("Not authorized")
}
