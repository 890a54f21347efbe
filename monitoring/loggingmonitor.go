package monitoring

// NewLoggingMonitor creates a monitor that just logs everything. This
// won't attempt to send anything to sentry or statsum.
func NewLoggingMonitor(logLevel string, tags map[string]string) Reporter {
	return &monitor{
		entry: newEntry(logLevel, tags),
	}
}
