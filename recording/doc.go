// Package recording stages captured audio as durable copies and mirrors
// them to secondary storage.
package recording
