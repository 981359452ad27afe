package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/driverauth"
	"github.com/tschsim/engine/internal/store"
	"github.com/tschsim/engine/internal/store/repository"
	"github.com/tschsim/engine/internal/web"
)

func main() {
	configFile := pflag.String("config", "", "path to config file (default: search ./config.yaml, data/config.yaml)")
	pflag.Parse()

	cfg := config.Load(*configFile)

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := store.Open(cfg.StatsDBPath)
	if err != nil {
		logger.Fatal("stats db open failed", zap.Error(err))
	}
	repo, err := repository.NewSnapshotRepo(db)
	if err != nil {
		logger.Fatal("stats db migrate failed", zap.Error(err))
	}

	hub := web.NewHub(logger)
	driver := NewDriver(cfg, logger, repo, hub)

	if cfg.TraceFile != "" {
		watchTraceFile(cfg.TraceFile, logger)
	}

	secretHash, err := driverauth.HashSecret(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("hashing operator secret failed", zap.Error(err))
	}
	_ = secretHash // the configured secret itself signs tokens; the hash is for an eventual login-by-secret endpoint.

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, driver.Status())
	})
	mux.Handle("/ws", hub.HandleWS(driver.Network))

	admin := driverauth.RequireRole(cfg.JWTSecret, "admin")
	limiter := driverauth.RateLimiter(cfg.AuthRPM)

	mux.Handle("POST /run", limiter(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		speed := 1.0
		if v := r.URL.Query().Get("speed"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				speed = f
			}
		}
		if err := driver.Run(speed); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, driver.Status())
	}))))
	mux.Handle("POST /pause", limiter(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := driver.Pause(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, driver.Status())
	}))))
	mux.Handle("POST /reset", limiter(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		driver.Reset()
		writeJSON(w, driver.Status())
	}))))

	handler := driverauth.Logging(logger)(mux)

	addr := ":" + cfg.Port
	startupLine := fmt.Sprintf("tschsimd listening on %s (run=%s)", addr, driver.Status().RunID)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("\x1b[32m%s\x1b[0m\n", startupLine)
	} else {
		fmt.Println(startupLine)
	}
	logger.Info("tschsimd starting", zap.String("addr", addr))

	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// watchTraceFile arms an fsnotify watch on the scripted trace event file
// and logs its write events for driver-side diagnostics. It does not
// reload or reparse the file, and no Trace link model sees the changes.
func watchTraceFile(path string, logger *zap.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("trace file watcher unavailable", zap.Error(err))
		return
	}
	if err := watcher.Add(path); err != nil {
		logger.Warn("failed to watch trace file", zap.String("path", path), zap.Error(err))
		watcher.Close()
		return
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					logger.Debug("trace file updated", zap.String("path", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("trace file watch error", zap.Error(err))
			}
		}
	}()
}
