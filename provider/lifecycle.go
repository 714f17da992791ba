package provider

// Resource is a provider that holds resources requiring explicit cleanup
// (an engine context, idle connections). Release must be idempotent.
type Resource interface {
	Provider
	Release() error
}
