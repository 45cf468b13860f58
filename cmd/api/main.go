package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plant-care-service/internal/adapters/auth/authsvc"
	"plant-care-service/internal/platform/logger"
	"plant-care-service/internal/ports/auth"
	"plant-care-service/internal/router"
	"plant-care-service/internal/scheduler"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin AUTH_SERVICE_URL queda en modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("AUTH_SERVICE_URL"); baseURL != "" {
		client, err := authsvc.NewClient(authsvc.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("AUTH_SERVICE_API_KEY"),
		})
		if err != nil {
			log.Error("auth client misconfigured", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = authsvc.NewVerifier(client)
	}

	app := router.NewApp(router.Options{
		AuthVerifier: verifier,
		Log:          log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := scheduler.NewWorker(app.Plants, app.Schedule, app.Notifications, log)
	if spec := os.Getenv("SCHEDULER_INTERVAL"); spec != "" {
		worker.SetSpec(spec)
	}
	if err := worker.Start(ctx); err != nil {
		log.Error("scheduler start failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
