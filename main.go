package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tovaldes/postmaster/internal/config"
	"github.com/tovaldes/postmaster/internal/game"
	"github.com/tovaldes/postmaster/internal/handlers"
	"github.com/tovaldes/postmaster/internal/store"
	"github.com/tovaldes/postmaster/internal/ws"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.LogLevel)

	catalogs, err := config.LoadCatalogs(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to load catalogs: ", err)
	}

	sessionStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("Failed to open session store: ", err)
	}

	ctx := &handlers.Context{
		Registry: game.NewRegistry(sessionStore, catalogs),
		Hub:      ws.NewHub(),
		Catalogs: catalogs,
		Cfg:      cfg,
	}

	// Routes
	http.HandleFunc("/create", ctx.HandleCreateRoom)
	http.HandleFunc("/join/", ctx.HandleJoinRoom)
	http.HandleFunc("/leave/", ctx.HandleLeaveRoom)
	http.HandleFunc("/qr/", ctx.HandleRoomQR)
	http.HandleFunc("/start/", ctx.HandleStartGame)
	http.HandleFunc("/lockin/", ctx.HandleLockIn)
	http.HandleFunc("/advance/", ctx.HandleForceAdvance)
	http.HandleFunc("/state/", ctx.HandleState)
	http.HandleFunc("/purchase/", ctx.HandlePurchase)
	http.HandleFunc("/timer-pause/", ctx.HandlePauseTimer)
	http.HandleFunc("/timer-resume/", ctx.HandleResumeTimer)
	http.HandleFunc("/incident/", ctx.HandleTriggerIncident)
	http.HandleFunc("/choice/", ctx.HandleSubmitChoice)
	http.HandleFunc("/ws/", ctx.HandleWS)
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go ctx.Run(runCtx)

	slog.Info("postmaster server listening", "addr", cfg.Addr, "store", cfg.StoreBackend)
	server := &http.Server{Addr: cfg.Addr}
	go func() {
		<-runCtx.Done()
		_ = server.Shutdown(context.Background())
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed: ", err)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == "sqlite" {
		return store.OpenSQLiteStore(cfg.SQLitePath)
	}
	return store.NewMemoryStore(), nil
}

func initLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
