package access

// Permission is a named capability. Keys are consumed by route handlers and
// navigation menus; renaming one is a breaking change.
type Permission string

const (
	PermViewDashboard     Permission = "dashboard.view"
	PermManageEmployees   Permission = "employees.manage"
	PermViewEmployees     Permission = "employees.view"
	PermManageDepartments Permission = "departments.manage"
	PermViewAttendance    Permission = "attendance.view"
	PermManagePayroll     Permission = "payroll.manage"
	PermApproveLeave      Permission = "leave.approve"
	PermRequestLeave      Permission = "leave.request"
	PermManageUsers       Permission = "users.manage"
	PermManageSettings    Permission = "settings.manage"
	PermGenerateQRCode    Permission = "qrcode.generate"
	PermPostAnnouncements Permission = "announcements.post"
	PermViewAuditLogs     Permission = "audit_logs.view"
)

func (p Permission) String() string {
	return string(p)
}

// Entry is one row of a permission table.
type Entry struct {
	Permission  Permission
	Description string
	Allowed     []Role
}

var (
	everyone = []Role{RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin, RoleManager, RoleEmployee}
	admins   = []Role{RoleSuperAdmin, RoleMainAdmin}
	hrAdmins = []Role{RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin}
	managers = []Role{RoleSuperAdmin, RoleMainAdmin, RoleHRAdmin, RoleManager}
)

// DefaultEntries returns the built-in permission table rows in display order.
// Each call returns fresh slices.
func DefaultEntries() []Entry {
	rows := []Entry{
		{PermViewDashboard, "View dashboard", everyone},
		{PermManageEmployees, "Manage employees", hrAdmins},
		{PermViewEmployees, "View employees", managers},
		{PermManageDepartments, "Manage departments", hrAdmins},
		{PermViewAttendance, "View attendance", everyone},
		{PermManagePayroll, "Manage payroll", hrAdmins},
		{PermApproveLeave, "Approve leave", managers},
		{PermRequestLeave, "Request leave", everyone},
		{PermManageUsers, "Manage users", admins},
		{PermManageSettings, "Manage settings", admins},
		{PermGenerateQRCode, "Generate QR codes", hrAdmins},
		{PermPostAnnouncements, "Post announcements", hrAdmins},
		{PermViewAuditLogs, "View audit logs", admins},
	}
	for i := range rows {
		rows[i].Allowed = append([]Role(nil), rows[i].Allowed...)
	}
	return rows
}
