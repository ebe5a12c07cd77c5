package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/lifecycle"
)

// NewSignalContext returns a context cancelled by the first SIGINT or SIGTERM.
// Signal reports which one arrived. A second signal exits the process at once.
func NewSignalContext(parent context.Context) *lifecycle.Context {
	return lifecycle.NewSignalContext(parent)
}

// CreateLogger configures the application logger.
// Without debug only warnings and errors are written, to keep the walker output clean.
func CreateLogger(debug bool, format string) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(os.Stderr, level, logging.Format(format))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
