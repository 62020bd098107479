package folio

import (
	"context"
	"log/slog"
	"time"
)

// RoleAdmin is the only role the gallery checks for.
const RoleAdmin = "admin"

// Session is a verified caller identity. A nil *Session is an anonymous visitor.
type Session struct {
	Identity string
}

type Level int

const (
	LevelAnonymous Level = iota
	LevelAuthenticated
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelAuthenticated:
		return "authenticated"
	case LevelAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Caller is the resolved identity and access level for one request.
type Caller struct {
	Identity string
	Level    Level
}

var Anonymous = Caller{Level: LevelAnonymous}

func (c Caller) IsAdmin() bool {
	return c.Level == LevelAdmin
}

type Action string

const (
	ActionRead    Action = "read"
	ActionUpload  Action = "upload"
	ActionDelete  Action = "delete"
	ActionFeature Action = "feature"
	ActionReorder Action = "reorder"
)

// Mutates reports whether the action changes gallery state.
func (a Action) Mutates() bool {
	return a != ActionRead
}

// RoleRepo reads identity-to-role grants. Grants are written out of band.
type RoleRepo interface {
	// HasRole reports whether identity holds role.
	HasRole(ctx context.Context, identity, role string) (bool, error)
}

// RoleGrant is one persisted identity-to-role relationship.
type RoleGrant struct {
	Identity  string    `json:"identity"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantRepo is the write side of role grants, used by admin tooling only.
type GrantRepo interface {
	RoleRepo

	// Grant records that identity holds role. Granting an existing grant is a no-op.
	Grant(ctx context.Context, identity, role string) error

	// Revoke removes a grant.
	//
	// Returns:
	//   - error: ErrNotFound if the grant doesn't exist, or other database errors
	Revoke(ctx context.Context, identity, role string) error

	// ListGrants returns every grant ordered by identity then role.
	ListGrants(ctx context.Context) ([]RoleGrant, error)
}

// Capabilities answers whether an identity may perform an action.
type Capabilities interface {
	HasCapability(ctx context.Context, identity string, action Action) bool
}

// Gate resolves sessions into callers and answers capability checks against
// a RoleRepo. Lookup failures fail closed.
type Gate struct {
	roles RoleRepo
}

func NewGate(roles RoleRepo) *Gate {
	return &Gate{roles: roles}
}

// Resolve returns the caller for a session: anonymous without a session,
// admin with an admin grant, authenticated otherwise.
func (g *Gate) Resolve(ctx context.Context, s *Session) Caller {
	if s == nil || s.Identity == "" {
		return Anonymous
	}

	if g.isAdmin(ctx, s.Identity) {
		return Caller{Identity: s.Identity, Level: LevelAdmin}
	}
	return Caller{Identity: s.Identity, Level: LevelAuthenticated}
}

func (g *Gate) HasCapability(ctx context.Context, identity string, action Action) bool {
	if !action.Mutates() {
		return true
	}
	if identity == "" {
		return false
	}
	return g.isAdmin(ctx, identity)
}

func (g *Gate) isAdmin(ctx context.Context, identity string) bool {
	ok, err := g.roles.HasRole(ctx, identity, RoleAdmin)
	if err != nil {
		slog.Warn("role lookup failed, denying admin", "identity", identity, "err", err)
		return false
	}
	return ok
}
