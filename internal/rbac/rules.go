package rbac

// Default policy for the two roles the LMS knows.
var RolePermissions = map[string][]string{
	"trainee": {
		"module:view",
		"quiz:view",
		"attempt:create",
		"attempt:answer",
		"attempt:submit",
		"attempt:review",
		"report:view-own",
		"announcement:view",
	},
	"admin": {
		"*", // everything
	},
}
