// Package logging provides the structured logger used by fitexport.
//
// It is a thin layer over the standard slog package that tags every entry with
// a subsystem name and, once SetRunID has been called, with the identifier of
// the current run. Output goes to stderr so that stdout stays free for the
// user-facing progress lines.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Config", "Loaded credentials from %s", path)
//	logging.Debug("Fitbit", "GET %s", endpoint)
//	logging.Warn("Browser", "Could not open browser")
//	logging.Error("Flow", err, "Fetch failed")
//
// # Audit Logging
//
// Security-sensitive operations are recorded with Audit:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "token_exchange",
//	    Outcome: "success",
//	    Target:  "api.fitbit.com",
//	})
//
// Audit events are logged at INFO level with an [AUDIT] prefix for easy filtering.
package logging
