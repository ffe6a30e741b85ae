package main

import (
	"context"
	"log/slog"
	"os"
)

// ビルド時に -ldflags で埋め込みます。
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	setupLogger(os.Stderr)
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("終了します", "error", err)
		os.Exit(1)
	}
}
