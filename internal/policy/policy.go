// Package policy maps platform roles to the capability set governing which
// actions a user may take. The mapping is fixed, total and free of side
// effects; callers must never grant an action the returned set does not name.
package policy

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleEditor    Role = "editor"
	RoleViewer    Role = "viewer"
)

// Permissions is the capability set attached to a role.
type Permissions struct {
	CanRead          bool `json:"can_read"`
	CanWrite         bool `json:"can_write"`
	CanDelete        bool `json:"can_delete"`
	CanManageUsers   bool `json:"can_manage_users"`
	CanManageContent bool `json:"can_manage_content"`
	CanUpload        bool `json:"can_upload"`
	CanModerate      bool `json:"can_moderate"`
}

// For returns the permission set for a role. A role outside the known set
// yields the zero Permissions: unknown roles fail closed, never open.
func For(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{
			CanRead:          true,
			CanWrite:         true,
			CanDelete:        true,
			CanManageUsers:   true,
			CanManageContent: true,
			CanUpload:        true,
			CanModerate:      true,
		}
	case RoleModerator:
		return Permissions{
			CanRead:          true,
			CanWrite:         true,
			CanManageContent: true,
			CanUpload:        true,
			CanModerate:      true,
		}
	case RoleEditor:
		return Permissions{
			CanRead:   true,
			CanWrite:  true,
			CanUpload: true,
		}
	case RoleViewer:
		return Permissions{CanRead: true}
	default:
		return Permissions{}
	}
}

// Known reports whether role is part of the fixed role enum.
func Known(role Role) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Roles lists the fixed role enum.
func Roles() []Role {
	return []Role{RoleAdmin, RoleModerator, RoleEditor, RoleViewer}
}
