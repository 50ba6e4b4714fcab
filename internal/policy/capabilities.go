package policy

import "fmt"

// capabilityTable maps (resource domain, registered action) to the
// capability a remote principal must hold. Keys are the action names
// the tool catalog registers: entry content is scoped per action
// (create/edit/delete/view), structural resources collapse their
// mutations onto a single configure capability, and account resources
// are gated on one manage capability.
var capabilityTable = map[string]map[string]string{
	"entries": {
		"create": "create entries",
		"edit":   "edit entries",
		"delete": "delete entries",
		"view":   "view entries",
	},
	"collections": {
		"create":    "configure collections",
		"configure": "configure collections",
		"delete":    "configure collections",
		"view":      "view collections",
	},
	"globals": {
		"configure": "configure globals",
		"delete":    "configure globals",
		"view":      "view globals",
	},
	"sites": {
		"configure": "configure sites",
		"delete":    "configure sites",
		"view":      "view sites",
	},
	"forms": {
		"configure": "configure forms",
		"delete":    "configure forms",
		"view":      "view forms",
	},
	"users": {
		"manage": "manage users",
		"view":   "view users",
	},
	"roles": {
		"manage": "manage roles",
		"view":   "view roles",
	},
	"groups": {
		"manage": "manage groups",
		"view":   "view groups",
	},
	"caches": {
		"clear": "manage caches",
	},
}

// CapabilityFor returns the capability required for an action on a
// resource domain. Total: unlisted pairs fall back to the generic
// "<action> <domain>" capability string.
func CapabilityFor(action, domain string) string {
	if actions, ok := capabilityTable[domain]; ok {
		if capability, ok := actions[action]; ok {
			return capability
		}
	}
	return fmt.Sprintf("%s %s", action, domain)
}
