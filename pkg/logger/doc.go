// Package logger provides the structured logging interface used across igfeed.
//
// It wraps zerolog with a small interface so components can be handed a
// logger explicitly and tests can swap in NewTestLogger or NewNopLogger.
//
// Basic Usage:
//
//	import "igfeed/pkg/logger"
//
//	err := logger.Initialize(&cfg.Logging)
//
//	log := logger.GetLogger().WithField("run_id", id)
//	log.Info("Gallery refresh starting")
//	log.WithError(err).Warn("API source failed")
//
// Console output is colourised; when Logging.File is set, the same events
// are appended to that file as JSON.
package logger
