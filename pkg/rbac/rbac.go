// Package rbac maps portal roles to permissions and expresses authorization
// checks as typed decisions. A Denied decision carries a human-readable
// reason so callers can short-circuit an action with an informational notice
// before doing any work. This is a convenience gate, not a security
// boundary: handlers still enforce roles on every mutating route.
package rbac

// Role is an actor's role within the portal.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleViewer     Role = "viewer" // view-only administrator
	RoleSuperAdmin Role = "superadmin"
)

// Permission names a single gated capability.
type Permission string

const (
	PermMemberApprove Permission = "members.approve"
	PermMemberReject  Permission = "members.reject"
	PermMemberList    Permission = "members.list"
	PermContactView   Permission = "contact.view"
	PermContactReply  Permission = "contact.reply"
	PermBroadcastSend Permission = "newsletter.broadcast"
	PermGalleryManage Permission = "gallery.manage"
)

// Decision is the outcome of a permission check.
type Decision struct {
	allowed bool
	reason  string
}

// Allowed reports whether the action may proceed.
func (d Decision) Allowed() bool { return d.allowed }

// Reason returns the denial notice, or an empty string when allowed.
func (d Decision) Reason() string { return d.reason }

// Allow returns a permitting decision.
func Allow() Decision { return Decision{allowed: true} }

// Deny returns a refusing decision carrying the given notice.
func Deny(reason string) Decision { return Decision{reason: reason} }

// Authorizer answers permission checks from a precomputed role to
// permission map. The map is never mutated after construction, so a single
// Authorizer is safe for concurrent use.
type Authorizer struct {
	grants map[Role]map[Permission]bool
}

// NewAuthorizer builds an authorizer with the portal's default grants.
// Viewers hold listing/viewing permissions only; the gap between viewer and
// admin is exactly the set of mutating actions.
func NewAuthorizer() *Authorizer {
	grants := map[Role][]Permission{
		RoleMember: {},
		RoleViewer: {PermMemberList, PermContactView},
		RoleAdmin: {
			PermMemberList, PermMemberApprove, PermMemberReject,
			PermContactView, PermContactReply,
			PermBroadcastSend, PermGalleryManage,
		},
	}
	// Superadmins inherit everything admins can do.
	grants[RoleSuperAdmin] = grants[RoleAdmin]

	a := &Authorizer{grants: make(map[Role]map[Permission]bool, len(grants))}
	for role, perms := range grants {
		set := make(map[Permission]bool, len(perms))
		for _, p := range perms {
			set[p] = true
		}
		a.grants[role] = set
	}
	return a
}

// Check evaluates whether the role holds the permission. Unknown roles are
// denied.
func (a *Authorizer) Check(role Role, perm Permission) Decision {
	set, ok := a.grants[role]
	if !ok {
		return Deny("unknown role")
	}
	if !set[perm] {
		if role == RoleViewer {
			return Deny("your account is view-only; this action is not available")
		}
		return Deny("you do not have permission to perform this action")
	}
	return Allow()
}

// IsAdmin reports whether the role is any administrator flavor, including
// view-only.
func IsAdmin(role Role) bool {
	return role == RoleAdmin || role == RoleViewer || role == RoleSuperAdmin
}
