package logging

import (
	"fmt"
	"strings"
)

// AuditEvent describes a security-relevant action, such as an OAuth code exchange.
type AuditEvent struct {
	// Action is what happened, e.g. "token_exchange".
	Action string
	// Outcome is "success" or a short failure reason.
	Outcome string
	// Target identifies the remote party, e.g. the token endpoint host.
	Target string
	// Details carries optional free-form context. Never put secrets here.
	Details string
}

// Audit logs an audit event at INFO level with an [AUDIT] prefix.
func Audit(event AuditEvent) {
	var b strings.Builder
	fmt.Fprintf(&b, "[AUDIT] action=%s outcome=%s", event.Action, event.Outcome)
	if event.Target != "" {
		fmt.Fprintf(&b, " target=%s", event.Target)
	}
	if event.Details != "" {
		fmt.Fprintf(&b, " details=%q", event.Details)
	}
	logInternal(LevelInfo, "Audit", nil, "%s", b.String())
}

// TruncateSecret shortens an opaque value (state, code, token) so it can be
// logged for correlation without leaking it.
func TruncateSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..." + s[len(s)-4:]
}
