// Package fslog provides the structured logging sink used by the fs2 CLI
// and, tests aside, by internal/diskfs's callers when they want visibility
// into allocator/chain activity beyond the plain error returns.
package fslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide sink. It defaults to a human-readable
// console writer on stderr; CLI entry points may redirect it (e.g. to
// plain JSON) via SetOutput before doing any work.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// SetOutput reconfigures Logger to write JSON lines to w, useful for a
// CLI invocation that wants machine-readable logs piped to another tool.
func SetOutput(w io.Writer) {
	Logger = zerolog.New(w).With().Timestamp().Logger()
}

// SetVerbose raises or lowers the minimum logged level. The CLI's -v flag
// (change directory) is unrelated to this -- verbosity here gates
// Debug()-level diagnostics (startup, format, load, dump), off by default.
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
