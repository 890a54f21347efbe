package monitoring

import (
	"fmt"
	godebug "runtime/debug"
	"strings"
	"time"

	raven "github.com/getsentry/raven-go"
	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taskcluster/statsum"

	"github.com/vmkit/gengc/atomics"
	"github.com/vmkit/gengc/gc"
)

// Reporter extends gc.Monitor with error reporting. Fatal collector
// conditions surface as panics; CapturePanic attaches an incident id and
// forwards them to sentry before letting them propagate.
type Reporter interface {
	gc.Monitor
	ReportError(err error, message ...interface{}) string
	ReportWarning(err error, message ...interface{}) string
	CapturePanic(fn func())
}

// Options for NewMonitor. Project and LogLevel are required; sentry and
// statsum sinks are enabled by supplying their credentials.
type Options struct {
	// Project name used in sentry and statsum.
	Project string
	// LogLevel for the logrus logger, one of debug, info, warning, error,
	// fatal, panic.
	LogLevel string
	// Tags applied to all log and sentry entries.
	Tags map[string]string
	// SentryDSN enables error reporting to sentry when non-empty.
	SentryDSN string
	// StatsumBaseURL and StatsumToken enable metrics submission when both
	// are non-empty.
	StatsumBaseURL string
	StatsumToken   string
}

type monitor struct {
	entry   *logrus.Entry
	statsum *statsum.Statsum // nil if not configured
	sentry  *raven.Client    // nil if not configured

	minorWatch atomics.StopWatch
	majorWatch atomics.StopWatch
	stwWatch   atomics.StopWatch
}

// NewMonitor creates the full monitoring backend.
func NewMonitor(options Options) (Reporter, error) {
	m := &monitor{
		entry: newEntry(options.LogLevel, options.Tags),
	}

	if options.SentryDSN != "" {
		client, err := raven.New(options.SentryDSN)
		if err != nil {
			return nil, err
		}
		m.sentry = client
	}

	if options.StatsumBaseURL != "" && options.StatsumToken != "" {
		configurer := func(project string) (statsum.Config, error) {
			return statsum.Config{
				Project: project,
				BaseURL: options.StatsumBaseURL,
				Token:   options.StatsumToken,
				Expires: time.Now().Add(365 * 24 * time.Hour),
			}, nil
		}
		m.statsum = statsum.New(options.Project, configurer, statsum.Options{
			OnError: func(err error) { m.ReportWarning(err) },
		})
	}

	return m, nil
}

// newEntry creates a logrus entry with the given level and tags.
func newEntry(logLevel string, tags map[string]string) *logrus.Entry {
	logger := logrus.New()
	switch strings.ToLower(logLevel) {
	case logrus.DebugLevel.String():
		logger.Level = logrus.DebugLevel
	case logrus.InfoLevel.String():
		logger.Level = logrus.InfoLevel
	case logrus.WarnLevel.String():
		logger.Level = logrus.WarnLevel
	case logrus.ErrorLevel.String():
		logger.Level = logrus.ErrorLevel
	case logrus.FatalLevel.String():
		logger.Level = logrus.FatalLevel
	case logrus.PanicLevel.String():
		logger.Level = logrus.PanicLevel
	default:
		panic(fmt.Sprintf("Unsupported log-level: %s", logLevel))
	}

	fields := make(logrus.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}
	return logrus.NewEntry(logger).WithFields(fields)
}

func (m *monitor) measure(name string, value float64) {
	if m.statsum != nil {
		m.statsum.Measure(name, value)
	}
}

func (m *monitor) StartMinorGC(minorHeapSize uint64) {
	m.minorWatch.Start()
	m.measure("minor-heap-size", float64(minorHeapSize))
	m.entry.WithField("minorHeapSize", minorHeapSize).Debug("minor collection starting")
}

func (m *monitor) EndMinorGC(minorHeapSize uint64) {
	elapsed := m.minorWatch.Reset()
	m.measure("minor-gc-duration", elapsed.Seconds()*1000)
	m.entry.WithFields(logrus.Fields{
		"minorHeapSize": minorHeapSize,
		"duration":      elapsed.String(),
	}).Info("minor collection finished")
}

func (m *monitor) StartMajorGC(majorHeapSize uint64) {
	m.majorWatch.Start()
	m.measure("major-heap-size", float64(majorHeapSize))
	m.entry.WithField("majorHeapSize", majorHeapSize).Debug("major collection starting")
}

func (m *monitor) EndMajorGC(majorHeapSize uint64) {
	elapsed := m.majorWatch.Reset()
	m.measure("major-gc-duration", elapsed.Seconds()*1000)
	m.entry.WithFields(logrus.Fields{
		"majorHeapSize": majorHeapSize,
		"duration":      elapsed.String(),
	}).Info("major collection finished")
}

func (m *monitor) StartSTW() {
	m.stwWatch.Start()
	m.entry.Debug("stopping the world")
}

func (m *monitor) EndSTW() {
	elapsed := m.stwWatch.Reset()
	m.measure("stw-pause", elapsed.Seconds()*1000)
	m.entry.WithField("pause", elapsed.String()).Debug("world resumed")
}

func (m *monitor) RecordMemoryUsage(majorHeapSize, minorHeapSize uint64) {
	m.measure("major-heap-size", float64(majorHeapSize))
	m.measure("minor-heap-size", float64(minorHeapSize))
	m.entry.WithFields(logrus.Fields{
		"majorHeapSize": majorHeapSize,
		"minorHeapSize": minorHeapSize,
	}).Debug("memory usage")
}

// ReportError reports an error to sentry and writes it to the log,
// returning an incidentId that can be surfaced to operators.
func (m *monitor) ReportError(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.entry.WithField("incidentId", incidentID).WithError(err).Error(message...)
	m.submitError(err, fmt.Sprint(message...), raven.ERROR, incidentID)
	return incidentID
}

// ReportWarning reports a warning to sentry and writes it to the log.
func (m *monitor) ReportWarning(err error, message ...interface{}) string {
	incidentID := uuid.NewRandom().String()
	m.entry.WithField("incidentId", incidentID).WithError(err).Warn(message...)
	m.submitError(err, fmt.Sprint(message...), raven.WARNING, incidentID)
	return incidentID
}

// CapturePanic runs fn and, if it panics, reports the panic before
// letting it propagate. Collector panics are fatal by contract, so they
// are never swallowed here, only annotated.
func (m *monitor) CapturePanic(fn func()) {
	defer func() {
		if crash := recover(); crash != nil {
			incidentID := uuid.NewRandom().String()
			trace := godebug.Stack()
			m.entry.WithField("incidentId", incidentID).WithField("panic", crash).Error(
				"Recovered from panic: ", crash, "\nAt:\n", string(trace),
			)
			m.submitError(fmt.Errorf("%v", crash), "panic in collector", raven.FATAL, incidentID)
			panic(crash)
		}
	}()
	fn()
}

func (m *monitor) submitError(err error, message string, level raven.Severity, incidentID string) {
	if m.sentry == nil {
		return
	}

	exception := raven.NewException(err, raven.NewStacktrace(2, 5, []string{
		"github.com/vmkit/",
	}))

	text := fmt.Sprintf("Error: %s\nMessage: %s", err.Error(), message)
	packet := raven.NewPacket(text, exception)
	packet.Level = level
	packet.EventID = strings.Replace(incidentID, "-", "", -1)

	_, done := m.sentry.Capture(packet, map[string]string{
		"incidentId": incidentID,
	})
	<-done
}
