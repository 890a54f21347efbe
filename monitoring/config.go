package monitoring

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	schematypes "github.com/taskcluster/go-schematypes"

	"github.com/vmkit/gengc/gc"
	"github.com/vmkit/gengc/mocks"
)

var mockConfigSchema = schematypes.Object{
	Properties: schematypes.Properties{
		"type": schematypes.StringEnum{Options: []string{"mock"}},
	},
	Required: []string{"type"},
}

var monitorConfigSchema schematypes.Schema = schematypes.Object{
	Properties: schematypes.Properties{
		"project": schematypes.String{
			Title:       "Sentry/Statsum Project Name",
			Description: "Project name to be used in sentry and statsum",
			Pattern:     "^[a-zA-Z0-9_-]{1,22}$",
		},
		"logLevel": schematypes.StringEnum{
			Options: []string{
				logrus.DebugLevel.String(),
				logrus.InfoLevel.String(),
				logrus.WarnLevel.String(),
				logrus.ErrorLevel.String(),
				logrus.FatalLevel.String(),
				logrus.PanicLevel.String(),
			},
		},
		"tags": schematypes.Map{
			Title:       "Tags",
			Description: "Tags that should be applied to all logs/sentry entries from this collector",
			Values:      schematypes.String{},
		},
		"sentryDSN": schematypes.String{
			Title:       "Sentry DSN",
			Description: "DSN for error reporting to sentry, leave empty to disable.",
		},
		"statsumBaseUrl": schematypes.String{
			Title:       "Statsum Base URL",
			Description: "Base URL for metrics submission to statsum, leave empty to disable.",
		},
		"statsumToken": schematypes.String{
			Title: "Statsum Token",
		},
	},
	Required: []string{"logLevel"},
}

// ConfigSchema for configuration given to New().
var ConfigSchema schematypes.Schema = schematypes.OneOf{
	mockConfigSchema,
	monitorConfigSchema,
}

// PreConfig returns a default monitor for use before the configuration is
// loaded. This logs at the INFO level to stderr.
func PreConfig() gc.Monitor {
	return NewLoggingMonitor("info", map[string]string{})
}

// New returns a gc.Monitor strategy from config matching ConfigSchema.
func New(config interface{}) (gc.Monitor, error) {
	if err := ConfigSchema.Validate(config); err != nil {
		return nil, errors.Wrap(err, "invalid monitoring configuration")
	}

	// try monitor schema
	var c struct {
		Project        string            `json:"project"`
		LogLevel       string            `json:"logLevel"`
		Tags           map[string]string `json:"tags"`
		SentryDSN      string            `json:"sentryDSN"`
		StatsumBaseURL string            `json:"statsumBaseUrl"`
		StatsumToken   string            `json:"statsumToken"`
	}
	if schematypes.MustMap(monitorConfigSchema, config, &c) == nil {
		if c.SentryDSN != "" || c.StatsumBaseURL != "" {
			return NewMonitor(Options{
				Project:        c.Project,
				LogLevel:       c.LogLevel,
				Tags:           c.Tags,
				SentryDSN:      c.SentryDSN,
				StatsumBaseURL: c.StatsumBaseURL,
				StatsumToken:   c.StatsumToken,
			})
		}
		return NewLoggingMonitor(c.LogLevel, c.Tags), nil
	}

	// try mock schema
	var m struct {
		Type string `json:"type"`
	}
	if schematypes.MustMap(mockConfigSchema, config, &m) == nil {
		return mocks.NewMockMonitor(), nil
	}

	return nil, errors.New("monitoring configuration did not match any strategy")
}
