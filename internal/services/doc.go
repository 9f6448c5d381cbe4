// Package services defines the shared error taxonomy and context helpers used
// across the composition engine.
//
// Errors are classified with exported sentinel values so callers can branch on
// errors.Is without parsing strings. Wrap tags an error with one of those
// sentinels while building a "component: operation: message" detail string for
// the log line or the CLI boundary.
//
// Context helpers annotate a context.Context with the segment and day the
// current operation concerns; the logging package reads them back to tag
// structured log output.
package services
