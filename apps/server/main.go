package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"bridge-lite/apps/server/internal/gateway"
	"bridge-lite/apps/server/internal/ledger"
	"bridge-lite/apps/server/internal/lobby"
	"bridge-lite/apps/server/internal/profile"

	"github.com/lmittmann/tint"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevelFromEnv(),
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv()
	if err != nil {
		logger.Error("init ledger failed", "err", err)
		os.Exit(1)
	}
	defer ledgerService.Close()

	profileService, profileMode, err := profile.NewServiceFromEnv()
	if err != nil {
		logger.Error("init profiles failed", "err", err)
		os.Exit(1)
	}
	defer profileService.Close()

	registry := lobby.NewRegistry(time.Now().UnixNano())
	gw := gateway.New(registry, ledgerService, logger)
	ledgerHTTP := ledger.NewHTTPHandler(ledgerService)
	profileHTTP := profile.NewHTTPHandler(profileService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"rooms":       registry.Count(),
			"connections": gw.ConnectionCount(),
		})
	})
	ledgerHTTP.RegisterRoutes(mux)
	profileHTTP.RegisterRoutes(mux)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("starting server",
		"addr", addr, "ledger", ledgerMode, "profiles", profileMode)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
