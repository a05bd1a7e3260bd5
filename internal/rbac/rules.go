package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"evaluator": {
		"evaluation:create",
		"evaluation:list",
		"volunteer:view",
		"criteria:view",
		"vault:view",
	},
	"supervisor": {
		"evaluation:*",
		"volunteer:*",
		"criteria:view",
		"alert:*",
		"vault:view",
		"report:view",
	},
	"admin": {
		"*", // everything
	},
}
