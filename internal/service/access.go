package service

import (
	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
)

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Action describes a requested mutation or read against a collaboration
// resource. Authorship is nil for read and create; update and delete carry
// the target resource's authorship marker.
type Action struct {
	Resource       model.ResourceKind
	Operation      Operation
	ProjectID      string
	ProjectOwnerID string
	Authorship     *model.Authorship
}

// Authorize decides whether the resolved identity may perform the action.
// A nil return means permitted. Denials are shaped by principal type:
// platform users get FORBIDDEN (distinguishable from not-found), portal
// visitors and unauthenticated callers get a generic UNAUTHORIZED that
// leaks nothing about the resource.
func Authorize(rc model.ResolvedContext, act Action) error {
	if !isProjectMember(rc, act) {
		return deny(rc)
	}

	switch act.Operation {
	case OpRead, OpCreate:
		return nil
	case OpUpdate, OpDelete:
		if act.Authorship == nil {
			return deny(rc)
		}
		if isAuthor(rc, *act.Authorship) {
			return nil
		}
		return deny(rc)
	default:
		return deny(rc)
	}
}

// AuthorshipFor derives the marker written onto a resource created by the
// resolved identity: a durable user id for platform users, the self-reported
// display name for portal visitors.
func AuthorshipFor(rc model.ResolvedContext) model.Authorship {
	switch rc.Kind {
	case model.IdentityUser:
		id := rc.User.ID
		return model.Authorship{AuthorUserID: &id}
	case model.IdentityPortal:
		name := rc.Visitor.VisitorName
		return model.Authorship{AuthorName: &name}
	default:
		return model.Authorship{}
	}
}

// isProjectMember reports whether the identity belongs to the action's
// project: the user owns it, or the portal session was issued for it.
func isProjectMember(rc model.ResolvedContext, act Action) bool {
	switch rc.Kind {
	case model.IdentityUser:
		return rc.User.ID == act.ProjectOwnerID
	case model.IdentityPortal:
		return rc.Visitor.ProjectID == act.ProjectID
	default:
		return false
	}
}

// isAuthor matches the identity against a resource's authorship marker.
// Visitor authorship is plain string equality on the display name: two
// visitors who picked the same name can edit each other's content. That is
// a documented property of name-as-identity, not an oversight here.
func isAuthor(rc model.ResolvedContext, a model.Authorship) bool {
	switch rc.Kind {
	case model.IdentityUser:
		return a.AuthorUserID != nil && *a.AuthorUserID == rc.User.ID
	case model.IdentityPortal:
		return a.AuthorName != nil && *a.AuthorName == rc.Visitor.VisitorName
	default:
		return false
	}
}

func deny(rc model.ResolvedContext) error {
	if rc.IsUser() {
		return apperrors.Forbidden("You do not have access to this resource")
	}
	return apperrors.Unauthorized("Not authorized")
}
