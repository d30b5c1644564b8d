// Package emoji provides the status symbols printed by CLI commands.
package emoji

// Status symbols.
const (
	// Success marks a check that passed or a pass without row errors.
	Success = "✓"

	// Error marks a failed check or an errored row.
	Error = "✗"

	// Warning marks a non-fatal problem.
	Warning = "!"

	// Info marks informational lines.
	Info = "i"
)

// Row action symbols.
const (
	Created = "+"
	Updated = "~"
	Skipped = "-"
	Errored = Error
)

// ForAction returns the symbol for a row action name.
func ForAction(action string) string {
	switch action {
	case "created":
		return Created
	case "updated":
		return Updated
	case "skipped":
		return Skipped
	case "errored":
		return Errored
	default:
		return "?"
	}
}
