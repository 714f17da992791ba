// Package process runs external executables with context-driven
// cancellation: a canceled context sends SIGTERM to the whole process group
// and escalates to SIGKILL after a grace period.
package process
