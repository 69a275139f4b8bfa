package access

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[Permission]struct{}{}
	for _, entry := range DefaultEntries() {
		if _, ok := seen[entry.Permission]; ok {
			t.Fatalf("duplicate permission %s", entry.Permission)
		}
		seen[entry.Permission] = struct{}{}
	}
	if len(seen) != 13 {
		t.Fatalf("expected 13 permissions, got %d", len(seen))
	}
}

func TestDefaultAllowedRolesAreKnown(t *testing.T) {
	for _, entry := range DefaultEntries() {
		if len(entry.Allowed) == 0 {
			t.Fatalf("permission %s has no roles", entry.Permission)
		}
		for _, role := range entry.Allowed {
			if !role.Valid() {
				t.Fatalf("permission %s has unknown role %s", entry.Permission, role)
			}
		}
	}
}

func TestDefaultTableGrid(t *testing.T) {
	table := DefaultTable()

	want := map[Permission][]Role{
		PermViewDashboard:     AllRoles(),
		PermManageEmployees:   {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin},
		PermViewEmployees:     {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin, RoleManager},
		PermManageDepartments: {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin},
		PermViewAttendance:    AllRoles(),
		PermManagePayroll:     {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin},
		PermApproveLeave:      {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin, RoleManager},
		PermRequestLeave:      AllRoles(),
		PermManageUsers:       {RoleSuperAdmin, RoleMainAdmin},
		PermManageSettings:    {RoleSuperAdmin, RoleMainAdmin},
		PermGenerateQRCode:    {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin},
		PermPostAnnouncements: {RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin},
		PermViewAuditLogs:     {RoleSuperAdmin, RoleMainAdmin},
	}
	require.Len(t, table.Permissions(), len(want))

	for permission, roles := range want {
		allowed, ok := table.Allowed(permission)
		require.True(t, ok, "missing %s", permission)
		assert.ElementsMatch(t, roles, allowed, "permission %s", permission)

		for _, role := range AllRoles() {
			expected := role == RoleSuperAdmin || contains(roles, role)
			assert.Equal(t, expected, table.Can(role, permission), "role=%s permission=%s", role, permission)
		}
	}
}

func TestTableUnknownPermissionOnlySuperAdmin(t *testing.T) {
	table := DefaultTable()
	missing := Permission("reports.delete")

	_, ok := table.Allowed(missing)
	assert.False(t, ok)
	assert.True(t, table.Can(RoleSuperAdmin, missing))
	for _, role := range AllRoles()[1:] {
		assert.False(t, table.Can(role, missing), "role %s", role)
	}
}

func TestTableAccessorsReturnCopies(t *testing.T) {
	table := DefaultTable()

	allowed, _ := table.Allowed(PermManageUsers)
	allowed[0] = RoleEmployee
	allowed[1] = RoleEmployee

	entries := table.Entries()
	entries[0].Allowed = nil

	keys := table.Permissions()
	keys[0] = "tampered"

	assert.False(t, table.Can(RoleEmployee, PermManageUsers))
	assert.True(t, table.Can(RoleEmployee, PermViewDashboard))
	assert.Equal(t, PermViewDashboard, table.Permissions()[0])
}

func TestNewTableRejectsInvalidRows(t *testing.T) {
	cases := []struct {
		name string
		rows []Entry
		want error
	}{
		{
			name: "empty key",
			rows: []Entry{{Permission: "  ", Allowed: []Role{RoleEmployee}}},
			want: ErrEmptyPermission,
		},
		{
			name: "duplicate key",
			rows: []Entry{
				{Permission: "a.read", Allowed: []Role{RoleEmployee}},
				{Permission: "a.read", Allowed: []Role{RoleManager}},
			},
			want: ErrDuplicatePermission,
		},
		{
			name: "unknown role",
			rows: []Entry{{Permission: "a.read", Allowed: []Role{"owner"}}},
			want: ErrUnknownRole,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestNewTableCollapsesRepeatedRoles(t *testing.T) {
	table, err := NewTable([]Entry{{Permission: "a.read", Allowed: []Role{RoleManager, RoleManager, RoleEmployee}}})
	require.NoError(t, err)
	allowed, _ := table.Allowed("a.read")
	assert.Equal(t, []Role{RoleManager, RoleEmployee}, allowed)
}

func TestGrantedTo(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, table.Permissions(), table.GrantedTo(RoleSuperAdmin))
	assert.Equal(t, []Permission{PermViewDashboard, PermViewAttendance, PermRequestLeave}, table.GrantedTo(RoleEmployee))
	assert.Empty(t, table.GrantedTo(Role("guest")))
	assert.Contains(t, table.GrantedTo(RoleManager), PermApproveLeave)
	assert.NotContains(t, table.GrantedTo(RoleManager), PermManagePayroll)
}

func TestWithOverrides(t *testing.T) {
	base := DefaultTable()

	next, err := base.WithOverrides(map[Permission][]Role{PermManageUsers: {RoleHRAdmin}})
	require.NoError(t, err)
	assert.True(t, next.Can(RoleHRAdmin, PermManageUsers))
	assert.False(t, next.Can(RoleMainAdmin, PermManageUsers))
	assert.True(t, next.Can(RoleSuperAdmin, PermManageUsers), "override must survive a list without super_admin")

	assert.False(t, base.Can(RoleHRAdmin, PermManageUsers), "base table must be unchanged")

	_, err = base.WithOverrides(map[Permission][]Role{"billing.manage": {RoleHRAdmin}})
	assert.ErrorIs(t, err, ErrUnknownPermission)

	locked, err := base.WithOverrides(map[Permission][]Role{PermPostAnnouncements: {}})
	require.NoError(t, err)
	allowed, ok := locked.Allowed(PermPostAnnouncements)
	require.True(t, ok)
	assert.NotNil(t, allowed, "an emptied list stays an empty list")
	assert.Empty(t, allowed)
	assert.Equal(t, []Permission{}, filterGranted(locked, RoleHRAdmin, PermPostAnnouncements))
}

func filterGranted(table *Table, role Role, permission Permission) []Permission {
	out := []Permission{}
	for _, p := range table.GrantedTo(role) {
		if p == permission {
			out = append(out, p)
		}
	}
	return out
}

func TestTableConcurrentReaders(t *testing.T) {
	table := DefaultTable()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, role := range AllRoles() {
				for _, permission := range table.Permissions() {
					_ = table.Can(role, permission)
				}
				_ = table.GrantedTo(role)
			}
		}()
	}
	wg.Wait()
}

func contains(roles []Role, role Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
