package domain

import "time"

// UserEventKind names a lifecycle change recorded in the audit trail.
type UserEventKind string

const (
	EventCreated UserEventKind = "created"
	EventLogin   UserEventKind = "login"
	EventUpdated UserEventKind = "updated"
	EventDeleted UserEventKind = "deleted"
)

// UserEvent is one audit trail entry.
type UserEvent struct {
	UserID string
	Kind   UserEventKind
	Actor  string // empty when the change was not made by an authenticated principal
	At     time.Time
}
