package services

import (
	"testing"

	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureNewsletterAdmin(t *testing.T) {
	f := newFixture(t, "boss@corp.test")
	group := f.group(t, "Platform")
	other := f.group(t, "Sales")
	newsletter := f.newsletter(t, group, "Weekly")

	superAdmin := f.user(t, "sup", models.RoleSuperAdmin)
	allowListed := f.user(t, "boss", models.RoleUser)
	granted := f.user(t, "grt", models.RoleUser)
	f.grant(t, newsletter, granted)

	groupAdmin := f.user(t, "gad", models.RoleAdmin)
	f.member(t, group, groupAdmin, "Admin")

	adminContributor := f.user(t, "acn", models.RoleAdmin)
	f.member(t, group, adminContributor, models.DefaultRoleInGroup)

	userGroupAdmin := f.user(t, "uga", models.RoleUser)
	f.member(t, group, userGroupAdmin, models.GroupAdminRole)

	adminElsewhere := f.user(t, "ael", models.RoleAdmin)
	f.member(t, other, adminElsewhere, models.GroupAdminRole)

	plain := f.user(t, "pln", models.RoleUser)

	tests := []struct {
		name    string
		actor   *models.User
		allowed bool
	}{
		{"super admin role", superAdmin, true},
		{"allow-listed email", allowListed, true},
		{"explicit newsletter grant", granted, true},
		{"global admin and group admin", groupAdmin, true},
		{"global admin but contributor", adminContributor, false},
		{"group admin without global admin", userGroupAdmin, false},
		{"group admin of another group", adminElsewhere, false},
		{"plain user", plain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.perms.EnsureNewsletterAdmin(tt.actor, newsletter)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrPermissionDenied)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t, "boss@corp.test")

	assert.NoError(t, f.perms.RequireAdmin(f.user(t, "adm", models.RoleAdmin)))
	assert.NoError(t, f.perms.RequireAdmin(f.user(t, "sup", models.RoleSuperAdmin)))
	assert.NoError(t, f.perms.RequireAdmin(f.user(t, "boss", models.RoleUser)))
	assert.ErrorIs(t, f.perms.RequireAdmin(f.user(t, "usr", models.RoleUser)), ErrAdminRequired)
}

func TestRequireSuperAdmin(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.perms.RequireSuperAdmin(f.user(t, "sup", models.RoleSuperAdmin)))
	assert.ErrorIs(t, f.perms.RequireSuperAdmin(f.user(t, "adm", models.RoleAdmin)), ErrSuperAdmin)
}

func TestReconcileRole_PersistsPromotion(t *testing.T) {
	f := newFixture(t, "boss@corp.test")
	boss := f.user(t, "boss", models.RoleUser)

	require.NoError(t, f.perms.ReconcileRole(boss))
	assert.Equal(t, models.RoleSuperAdmin, boss.GlobalRole)

	var stored models.User
	require.NoError(t, f.db.First(&stored, boss.ID).Error)
	assert.Equal(t, models.RoleSuperAdmin, stored.GlobalRole)
}

func TestReconcileRole_LeavesOthersAlone(t *testing.T) {
	f := newFixture(t, "boss@corp.test")
	admin := f.user(t, "adm", models.RoleAdmin)

	require.NoError(t, f.perms.ReconcileRole(admin))

	var stored models.User
	require.NoError(t, f.db.First(&stored, admin.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.GlobalRole)
}
