// Package integration tests a running relay. Start it with a local model
// before running the tests without -short.
package integration

import (
	"log/slog"
	"os"
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))
