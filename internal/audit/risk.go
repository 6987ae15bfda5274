package audit

import (
	"encoding/json"
	"strings"
)

var criticalKeywords = []string{
	"delete_database",
	"drop_database",
	"drop_table",
	"bypass_security",
	"disable_security",
	"sandbox_escape",
	"privilege_escalation",
	"disable_audit",
	"wipe_all",
}

var sensitiveOperations = map[Category][]string{
	CategoryBrowserAutomation: {"execute_script", "evaluate", "download", "upload", "set_cookie", "clear_cookies", "fill_credentials"},
	CategoryPermission:        {"grant_all", "escalate", "elevate", "modify_permissions", "grant_admin"},
	CategoryFile:              {"delete", "chmod", "chown", "write_system", "write_executable", "move_outside_sandbox"},
	CategoryDataStore:         {"drop", "truncate", "delete_all", "bulk_delete", "export_all", "dsr_deletion"},
	CategoryAPI:               {"create_key", "revoke_key", "rotate_key", "delete_account", "change_password"},
	CategoryCollaboration:     {"share_external", "make_public", "transfer_ownership", "invite_admin"},
	CategoryAuth:              {"login_failed", "password_reset", "mfa_disable", "token_revoke", "privilege_change"},
	CategorySystem:            {"shutdown", "update_binary", "modify_config", "disable_logging", "install_plugin"},
}

var sensitivityPatterns = []string{
	"password", "credential", "secret", "admin", "delete", "remove",
	"export", "import", "permission", "role", "encrypt", "decrypt",
}

// AssessRisk derives the risk level of an event. It depends only on its
// arguments; details are serialized with sorted keys, so map iteration order
// has no effect.
func AssessRisk(category Category, operation string, details map[string]any) RiskLevel {
	op := strings.ToLower(operation)

	for _, kw := range criticalKeywords {
		if strings.Contains(op, kw) {
			return RiskCritical
		}
	}

	for _, sensitive := range sensitiveOperations[category] {
		if strings.Contains(op, sensitive) {
			return RiskHigh
		}
	}

	serialized := ""
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			serialized = strings.ToLower(string(raw))
		}
	}
	for _, p := range sensitivityPatterns {
		if strings.Contains(op, p) || strings.Contains(serialized, p) {
			return RiskMedium
		}
	}

	if category == CategoryAuth || category == CategoryPermission {
		return RiskMedium
	}
	return RiskLow
}
