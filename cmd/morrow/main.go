package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rowanvale/morrow/internal/database"
	"github.com/rowanvale/morrow/internal/logging"
	"github.com/rowanvale/morrow/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("MORROW_LOG_LEVEL"))

	port := os.Getenv("MORROW_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MORROW_DB_PATH")
	if dbPath == "" {
		dbPath = "morrow.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.ReminderScheduler().Start(ctx)
	defer srv.ReminderScheduler().Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("morrow running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
