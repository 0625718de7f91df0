package auth

const (
	RoleHR          = "hr"
	RoleManager     = "manager"
	RoleSystemAdmin = "system_admin"
)

const (
	PermEmployeesRead    = "employees.read"
	PermEmployeesWrite   = "employees.write"
	PermCriteriaRead     = "criteria.read"
	PermCriteriaWrite    = "criteria.write"
	PermEvaluationsRead  = "evaluations.read"
	PermEvaluationsWrite = "evaluations.write"
	PermRoundsRead       = "rounds.read"
	PermRoundsManage     = "rounds.manage"
	PermReportsRead      = "reports.read"
	PermMeritRead        = "merit.read"
	PermAuditRead        = "audit.read"
	PermAdminLinks       = "admin.links"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermCriteriaRead,
	PermCriteriaWrite,
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermRoundsRead,
	PermRoundsManage,
	PermReportsRead,
	PermMeritRead,
	PermAuditRead,
	PermAdminLinks,
}

// RolePermissions is the seeded grant table. Managers never reach
// salary data or round administration.
var RolePermissions = map[string][]string{
	RoleManager: {
		PermEmployeesRead,
		PermCriteriaRead,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermRoundsRead,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermCriteriaRead,
		PermCriteriaWrite,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermRoundsRead,
		PermRoundsManage,
		PermReportsRead,
		PermMeritRead,
		PermAuditRead,
		PermAdminLinks,
	},
	RoleSystemAdmin: {
		PermRoundsRead,
		PermRoundsManage,
		PermAuditRead,
		PermAdminLinks,
	},
}

// Allows reports whether the seeded grant table gives role the permission.
func Allows(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
