package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/blog-press/app/api"
	"github.com/lysyi3m/blog-press/app/cfg"
	"github.com/lysyi3m/blog-press/app/content"
	"github.com/lysyi3m/blog-press/app/database"
	"github.com/lysyi3m/blog-press/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting blog-press server", "version", appCfg.Version)

	version, dirty, err := database.RunMigrations(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	postRepo := database.NewPostRepository(db)

	postCache := content.NewCache(appCfg.PostsDir)
	if err := postCache.Run(); err != nil {
		slog.Error("Failed to load posts", "dir", appCfg.PostsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Posts loaded", "dir", appCfg.PostsDir, "count", postCache.GetPostCount())

	scheduler := tasks.NewScheduler(postCache, postRepo)
	scheduler.Start()
	defer scheduler.Stop()

	if err := scheduler.EnqueueTask(tasks.NewIndexPostsTask(postCache, postRepo)); err != nil {
		slog.Warn("Failed to enqueue initial index task", "error", err)
	}

	handler := api.NewHandler(postCache, postRepo, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
