// Package security builds client TLS configuration for the outbound HTTP
// clients used by the cloud backend and the enhancement adapter.
package security
