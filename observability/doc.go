// Package observability wires OpenTelemetry tracing and metrics for
// transcription sessions.
//
//	metrics, shutdown, err := observability.Setup(ctx, cfg.Observability, "scribe", version.Version)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribing)
//	defer span.End()
//
// When export is disabled the global no-op providers are used, so spans and
// instruments stay cheap and callers need no special casing.
package observability
