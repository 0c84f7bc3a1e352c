package user

type Permission string

const (
	// Attendance summaries
	PermissionSummaryView   Permission = "summary.view"
	PermissionSummaryManage Permission = "summary.manage"

	// Calendar and leave diagnostics
	PermissionCalendarView Permission = "calendar.view"
	PermissionLeaveViewAll Permission = "leave.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionSummaryView,
		PermissionSummaryManage,
		PermissionCalendarView,
		PermissionLeaveViewAll,
	},
	RoleManager: {
		PermissionSummaryView,
		PermissionSummaryManage,
		PermissionCalendarView,
		PermissionLeaveViewAll,
	},
	RoleEmployee: {
		PermissionCalendarView,
	},
	RolePending: {
		// Pending role has no permissions
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
