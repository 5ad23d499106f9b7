// Package logger provides a structured logging interface for the bot.
//
// It wraps zerolog with a small field-carrying API:
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Post published", map[string]interface{}{
//	    "index": 3,
//	    "uri":   ref.URI,
//	})
//
// Console output goes to stderr; when LoggingConfig.File is set the same events are
// also appended to that file. TestLogger captures messages for assertions in tests.
package logger
