package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/config"
	"github.com/yeremiapane/wastezero-realtime/database"
	"github.com/yeremiapane/wastezero-realtime/realtime"
	"github.com/yeremiapane/wastezero-realtime/router"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		utils.ErrorLogger.Fatalf("Invalid flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)
	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	hub := realtime.NewHub()
	if cfg.TokenCleanupInterval > 0 {
		utils.StartBlacklistCleanup(ctx, cfg.TokenCleanupInterval)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.SetupRouter(store, hub, cfg),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (driver=%s)", cfg.Port, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Closing store: %v", err)
	}
}
