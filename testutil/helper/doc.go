// Package helper provides spies for the logging, metrics and tracing collaborators of the snapshot
// service and its stores, for use in tests only.
package helper
