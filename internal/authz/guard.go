// Package authz holds the ownership guard: a pure decision function used
// before every mutating operation on an owned resource.
package authz

import "fmt"

// Actor is the identity attempting an operation. The zero Actor is the
// anonymous (unauthenticated) identity.
type Actor struct {
	ID string
}

// Anonymous reports whether the actor carries no authenticated identity.
func (a Actor) Anonymous() bool {
	return a.ID == ""
}

// Action names the mutation being attempted, for denial messaging.
type Action string

const (
	ActionEditPost      Action = "edit_post"
	ActionDeletePost    Action = "delete_post"
	ActionUpdateProfile Action = "update_profile"
)

// Reason classifies why a mutation was denied.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonNotOwner        Reason = "not_owner"
)

// DeniedError is returned by Authorize when the actor may not perform
// the action. Callers inspect Reason to pick a status code: an
// unauthenticated actor gets 401, a wrong owner gets 403.
type DeniedError struct {
	Action Action
	Reason Reason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Action, e.Reason)
}

// Authorize decides whether actor may perform action on a resource owned
// by ownerID. Pure: no I/O, no side effects. Returns nil when allowed,
// otherwise a *DeniedError with a distinct reason for "not logged in"
// versus "logged in as someone else".
func Authorize(actor Actor, ownerID string, action Action) error {
	if actor.Anonymous() {
		return &DeniedError{Action: action, Reason: ReasonUnauthenticated}
	}
	if actor.ID != ownerID {
		return &DeniedError{Action: action, Reason: ReasonNotOwner}
	}
	return nil
}
