// Package logging provides structured logging for roleshuffle.
//
// Logger wraps Zap with context-aware methods. Fields carried in the
// context (trace and span ids, reveal run id, HTTP request id) are appended
// to every entry automatically:
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, run.ID())
//	logger.Info(ctx, "reveal finished", zap.Int("ticks", 5))
//
// Output goes to stderr, to a file, and/or to an OpenTelemetry log provider.
// Sampling applies below Error level only.
//
// Tests use NewTestLogger, which records entries in memory.
package logging
