// Package component runs infrastructure pieces through a start/stop
// lifecycle in dependency order.
package component
