package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

func TestAuthorizer_Check(t *testing.T) {
	authz := rbac.NewAuthorizer()

	tests := []struct {
		name    string
		role    rbac.Role
		perm    rbac.Permission
		allowed bool
	}{
		{"admin can approve members", rbac.RoleAdmin, rbac.PermMemberApprove, true},
		{"admin can reject members", rbac.RoleAdmin, rbac.PermMemberReject, true},
		{"superadmin inherits admin grants", rbac.RoleSuperAdmin, rbac.PermBroadcastSend, true},
		{"viewer can list members", rbac.RoleViewer, rbac.PermMemberList, true},
		{"viewer cannot approve", rbac.RoleViewer, rbac.PermMemberApprove, false},
		{"viewer cannot reject", rbac.RoleViewer, rbac.PermMemberReject, false},
		{"viewer cannot broadcast", rbac.RoleViewer, rbac.PermBroadcastSend, false},
		{"member has no admin permissions", rbac.RoleMember, rbac.PermMemberList, false},
		{"unknown role denied", rbac.Role("ghost"), rbac.PermMemberList, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := authz.Check(tt.role, tt.perm)
			assert.Equal(t, tt.allowed, d.Allowed())
			if tt.allowed {
				assert.Empty(t, d.Reason())
			} else {
				assert.NotEmpty(t, d.Reason())
			}
		})
	}
}

func TestAuthorizer_ViewerDenialReason(t *testing.T) {
	authz := rbac.NewAuthorizer()
	d := authz.Check(rbac.RoleViewer, rbac.PermMemberApprove)
	assert.False(t, d.Allowed())
	assert.Contains(t, d.Reason(), "view-only")
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, rbac.IsAdmin(rbac.RoleAdmin))
	assert.True(t, rbac.IsAdmin(rbac.RoleViewer))
	assert.True(t, rbac.IsAdmin(rbac.RoleSuperAdmin))
	assert.False(t, rbac.IsAdmin(rbac.RoleMember))
}
