package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text formatter at debug level.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	logrus.SetOutput(os.Stdout)
	if env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// WithRequest returns a logger with request context fields attached.
// Use this for all logging within a single inbound request.
func WithRequest(requestID, route string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"route":      route,
	})
}

// WithUpstream returns a logger scoped to an outbound dependency.
func WithUpstream(entry *logrus.Entry, upstream string) *logrus.Entry {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return entry.WithField("upstream", upstream)
}
