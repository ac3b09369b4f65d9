// Package logging provides the structured loggers used across a generation
// run: JSON in production, pretty-printed JSON in development, with each run
// tagged by a unique run id.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tapigen/tapigen/nanoid"
)

// PrettyJSONHandler is a custom handler that pretty prints JSON in development
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	// Convert the record to a map
	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	// Add time and level
	attrs["time"] = r.Time.Format(time.RFC3339)
	attrs["level"] = r.Level.String()
	attrs["msg"] = r.Message

	// Marshal with indentation
	prettyJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}

	// Write to the handler's writer with newline
	_, err = h.writer.Write(append(prettyJSON, '\n'))
	return err
}

// NewPrettyJSONHandler creates a new pretty JSON handler
func newPrettyJSONHandler() *PrettyJSONHandler {
	return &PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(os.Stdout, nil),
		writer:      os.Stdout,
	}
}

var ProdLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

var DevLogger = slog.New(newPrettyJSONHandler())

// NewRunLogger returns a logger carrying a fresh run id, and the id itself so
// callers can reference it in console output and artifacts.
func NewRunLogger(dev bool) (*slog.Logger, string) {
	runID := nanoid.New()
	logger := ProdLogger
	if dev {
		logger = DevLogger
	}
	return logger.With("run_id", runID), runID
}

// ForTable scopes a logger to one table's generation.
func ForTable(logger *slog.Logger, schema, table string) *slog.Logger {
	return logger.With("schema", schema, "table", table)
}

// Timed logs started/completed events around an operation. Use as
// defer Timed(logger, "generate_package")().
func Timed(logger *slog.Logger, msg string) func() {
	start := time.Now()
	logger.Info(msg+"_started", "timestamp", start)
	return func() {
		logger.Info(msg+"_completed",
			"duration_ms", float64(time.Since(start).Nanoseconds())/1e6,
			"timestamp", time.Now(),
		)
	}
}
