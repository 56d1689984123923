package models

// AuditContext carries the transient acting principal for a single mutation.
// Entities embed it so callers can attribute a write without the field ever
// being persisted. The audit observer falls back to the request-scoped actor
// when no transient actor was attached.
type AuditContext struct {
	auditActor *User
}

// SetAuditActor attaches the acting principal for the next mutation.
func (a *AuditContext) SetAuditActor(u *User) {
	a.auditActor = u
}

// AuditActor returns the transient actor, nil when none was attached.
func (a *AuditContext) AuditActor() *User {
	if a == nil {
		return nil
	}
	return a.auditActor
}
