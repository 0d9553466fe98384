package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/institute-scheduler/internal/app"
	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/institute-scheduler/internal/db"
	"github.com/BruksfildServices01/institute-scheduler/internal/jobs"
	"github.com/BruksfildServices01/institute-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	a, err := app.New(cfg, db)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	scheduler, err := jobs.Start(a)
	if err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}

	r := gin.Default()
	routes.RegisterRoutes(r, a)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	scheduler.Stop()
	a.Close()
}
