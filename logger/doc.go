// Package logger provides structured logging for scribe using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers. Components receive their logger explicitly.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.GetGlobalLogger().WithComponent("session")
//	log.Info("transcription completed", logger.Fields(logger.FieldJobID, id))
package logger
