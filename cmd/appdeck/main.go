package main

import (
	"appdeck/cmd/appdeck/commands"
	"appdeck/internal/components/telemetry"
	"appdeck/pkg/serviceutil"
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
)

func main() {
	ctx := serviceutil.SignalContext()

	otel, err := telemetry.SetupFromEnv(ctx, "appdeck")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to setup telemetry", "err", err)
	}

	code := commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = otel.Shutdown(shutdownCtx)
	cancel()
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}

	os.Exit(code)
}
