package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/camp-rental/backend/internal/api"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/websocket"
)

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, WebSocket hub and scheduled jobs",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "HTTP server address (CAMP_ADDR)")
	cmd.Flags().String("static", "", "Directory for static frontend files (CAMP_STATIC_DIR)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("static"); v != "" {
		cfg.StaticDir = v
	}

	log.Printf("Starting camp availability server (version: %s)...", cfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	a, err := newApp(hub)
	if err != nil {
		return err
	}
	defer a.Close()
	log.Println("Database migrations complete")

	loc, _ := cfg.Location()
	scheduler := calendar.NewScheduler(a.bookings, a.importer, loc, cfg.ImportInterval)
	if err := scheduler.Start(ctx); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}

	router := api.NewRouter(api.Services{
		DB:        a.db,
		Store:     a.store,
		Engine:    a.engine,
		Bookings:  a.bookings,
		Blocks:    a.blocks,
		Importer:  a.importer,
		Scheduler: scheduler,
		Hub:       hub,
		StaticDir: cfg.StaticDir,
		Version:   cfg.Version,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			scheduler.Stop()
			return err
		}
	}

	log.Println("Shutting down server...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Println("Server stopped")
	return nil
}
