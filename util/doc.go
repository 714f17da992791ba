// Package util provides small generic helpers shared across scribe packages.
package util
