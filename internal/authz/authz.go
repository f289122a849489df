// Package authz implements the forum's ownership and role gates.
package authz

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "User"
	RoleModerator Role = "Moderator"
	RoleAdmin     Role = "Admin"
)

// ParseRole reports whether value names a known role.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// Actor is the caller's identity as derived from a verified bearer token.
// Known is false for anonymous requests.
type Actor struct {
	UserID uuid.UUID
	Role   Role
	Known  bool
}

// Error is a Forbidden-class failure from a gate check.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func forbidden(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Authorizer gates mutations on the caller's identity and role. AllowAll is
// the explicit no-check implementation for unauthenticated wiring and tests;
// production always uses Guard.
type Authorizer interface {
	CurrentUserID(actor Actor) (uuid.UUID, error)
	CurrentRole(actor Actor) (Role, error)
	IsModeratorOrAdmin(actor Actor) bool
	EnsureCanManageOwnedEntity(actor Actor, ownerID uuid.UUID, entityName string) error
	EnsureCanManageTaxonomy(actor Actor, entityName string) error
	EnsureCurrentUserMatches(actor Actor, userID uuid.UUID) error
	EnsureCanManageUserAccount(actor Actor, targetUserID uuid.UUID) error
}

// Guard enforces the forum's rules: owners may manage their own entities,
// Moderator/Admin override ownership, only Admin overrides account checks.
type Guard struct{}

func (Guard) CurrentUserID(actor Actor) (uuid.UUID, error) {
	if !actor.Known || actor.UserID == uuid.Nil {
		return uuid.Nil, forbidden("User identifier is missing in token.")
	}
	return actor.UserID, nil
}

func (Guard) CurrentRole(actor Actor) (Role, error) {
	if !actor.Known {
		return "", forbidden("User role is missing in token.")
	}
	if _, ok := ParseRole(string(actor.Role)); !ok {
		return "", forbidden("User role is missing in token.")
	}
	return actor.Role, nil
}

func (g Guard) IsModeratorOrAdmin(actor Actor) bool {
	role, err := g.CurrentRole(actor)
	if err != nil {
		return false
	}
	return role == RoleModerator || role == RoleAdmin
}

func (g Guard) EnsureCanManageOwnedEntity(actor Actor, ownerID uuid.UUID, entityName string) error {
	if g.IsModeratorOrAdmin(actor) {
		return nil
	}
	currentUserID, err := g.CurrentUserID(actor)
	if err != nil {
		return err
	}
	if currentUserID != ownerID {
		return forbidden("You can modify only your own %s.", entityName)
	}
	return nil
}

func (g Guard) EnsureCanManageTaxonomy(actor Actor, entityName string) error {
	if !g.IsModeratorOrAdmin(actor) {
		return forbidden("Only moderator or admin can manage %s.", entityName)
	}
	return nil
}

func (g Guard) EnsureCurrentUserMatches(actor Actor, userID uuid.UUID) error {
	if g.IsModeratorOrAdmin(actor) {
		return nil
	}
	currentUserID, err := g.CurrentUserID(actor)
	if err != nil {
		return err
	}
	if currentUserID != userID {
		return forbidden("You can perform this action only for your own account.")
	}
	return nil
}

func (g Guard) EnsureCanManageUserAccount(actor Actor, targetUserID uuid.UUID) error {
	role, err := g.CurrentRole(actor)
	if err != nil {
		return err
	}
	if role == RoleAdmin {
		return nil
	}
	currentUserID, err := g.CurrentUserID(actor)
	if err != nil {
		return err
	}
	if currentUserID != targetUserID {
		return forbidden("Only admin can manage other users accounts.")
	}
	return nil
}

// AllowAll skips every check. CurrentUserID still reports the actor's id so
// owner stamping keeps working without enforcement.
type AllowAll struct{}

func (AllowAll) CurrentUserID(actor Actor) (uuid.UUID, error) { return actor.UserID, nil }

func (AllowAll) CurrentRole(actor Actor) (Role, error) { return actor.Role, nil }

func (AllowAll) IsModeratorOrAdmin(Actor) bool { return true }

func (AllowAll) EnsureCanManageOwnedEntity(Actor, uuid.UUID, string) error { return nil }

func (AllowAll) EnsureCanManageTaxonomy(Actor, string) error { return nil }

func (AllowAll) EnsureCurrentUserMatches(Actor, uuid.UUID) error { return nil }

func (AllowAll) EnsureCanManageUserAccount(Actor, uuid.UUID) error { return nil }
