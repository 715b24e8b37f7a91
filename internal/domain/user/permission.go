package user

type Permission string

const (
	// Attendance
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceManage  Permission = "attendance.manage" // act on behalf of another employee
	PermissionAttendanceCorrect Permission = "attendance.correct"
	PermissionAttendanceDelete  Permission = "attendance.delete"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Audit
	PermissionAuditView Permission = "audit.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionAttendanceCorrect,
		PermissionAttendanceDelete,
		PermissionReportsView,
		PermissionAuditView,
	},
	RoleHR: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionAttendanceCorrect,
		PermissionReportsView,
		PermissionAuditView,
	},
	RoleManager: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionReportsView,
	},
	RoleEmployee: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// IsKnownPermission reports whether p is one of the declared permissions.
func IsKnownPermission(p Permission) bool {
	for _, perm := range RolePermissions[RoleAdmin] {
		if perm == p {
			return true
		}
	}
	return false
}
