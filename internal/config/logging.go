package config

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the process logger: readable text on stderr for the
// operator, plus an append-only JSON stream when LogFile is set so agent
// runs can be inspected after the fact. Conversation output goes to
// stdout and must stay out of both streams. The returned flush closes
// the log file and is safe to call when no file was opened.
func (c Config) NewLogger() (*slog.Logger, func() error) {
	noop := func() error { return nil }

	opts := &slog.HandlerOptions{Level: c.LogLevel}
	stderr := slog.NewTextHandler(os.Stderr, opts)

	if c.LogFile == "" {
		return slog.New(stderr), noop
	}

	file, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("log file unavailable, logging to stderr only", "error", err, "file", c.LogFile)
		return slog.New(stderr), noop
	}

	logger := slog.New(slogmulti.Fanout(stderr, slog.NewJSONHandler(file, opts)))
	return logger, file.Close
}
