package model

type IdentityKind string

const (
	IdentityUser   IdentityKind = "user"
	IdentityPortal IdentityKind = "portal"
	IdentityNone   IdentityKind = "none"
)

// ResolvedContext is the per-request result of identity resolution: exactly
// one of a platform user, a portal visitor session, or nothing. Every
// authorization decision downstream consumes this value and only this value.
type ResolvedContext struct {
	Kind    IdentityKind
	User    *User
	Visitor *PortalSession
}

func ResolvedUser(user *User) ResolvedContext {
	return ResolvedContext{Kind: IdentityUser, User: user}
}

func ResolvedVisitor(session *PortalSession) ResolvedContext {
	return ResolvedContext{Kind: IdentityPortal, Visitor: session}
}

func ResolvedNone() ResolvedContext {
	return ResolvedContext{Kind: IdentityNone}
}

func (rc ResolvedContext) IsUser() bool   { return rc.Kind == IdentityUser }
func (rc ResolvedContext) IsPortal() bool { return rc.Kind == IdentityPortal }
func (rc ResolvedContext) IsNone() bool   { return rc.Kind == IdentityNone }
