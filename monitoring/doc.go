// Package monitoring implements the collector's Monitor seam on top of
// logrus, statsum and sentry. The full monitor logs collection phases,
// exports heap-size measures and pause timers to statsum, and reports
// errors to sentry; the logging monitor just logs. Neither affects
// collection behavior in any way.
package monitoring
