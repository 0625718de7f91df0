package middleware

import (
	"net/http"

	"hrkey/internal/domain/audit"
	"hrkey/internal/requestctx"
)

// AuditEntry describes a mutation made by the request's caller.
func AuditEntry(r *http.Request, action, entityType, entityID string, before, after any) audit.Entry {
	entry := audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  GetRequestID(r.Context()),
		IP:         requestctx.GetClientIP(r.Context()),
		Before:     before,
		After:      after,
	}
	if user, ok := GetUser(r.Context()); ok {
		entry.ActorRole = user.RoleName
		entry.ActorID = user.UserID
		if entry.ActorID == "" && user.ManagerCode != "" {
			entry.ActorID = "manager:" + user.ManagerCode
		}
	}
	return entry
}
