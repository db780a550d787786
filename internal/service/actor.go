package service

import "checksuite-service/internal/model"

// Actor is the authenticated caller of a service operation. The workspace and
// role are pinned at login time, so every operation is a pure function of the
// caller identity and its explicit inputs.
type Actor struct {
	UserID      string
	Email       string
	WorkspaceID string
	Role        string
}

// IsAdmin reports whether the actor holds the owner or admin role.
func (a Actor) IsAdmin() bool {
	return model.IsAdminRole(a.Role)
}
