package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ticketing/internal/broadcast"
	"github.com/iliyamo/venue-ticketing/internal/config"
	"github.com/iliyamo/venue-ticketing/internal/database"
	"github.com/iliyamo/venue-ticketing/internal/engine"
	"github.com/iliyamo/venue-ticketing/internal/handler"
	"github.com/iliyamo/venue-ticketing/internal/queue"
	"github.com/iliyamo/venue-ticketing/internal/router"
	"github.com/iliyamo/venue-ticketing/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	st := store.NewMySQLStore(db)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// The broadcast path: mutations publish through Redis so that every
	// instance's viewers see them; without Redis the hub is wired in
	// directly and broadcast stays process-local.
	hub := broadcast.NewHub()
	rdb := config.NewRedisClient()
	var sink broadcast.Sink
	if rdb != nil {
		sink = broadcast.NewRedisSink(rdb)
		go broadcast.Subscribe(ctx, rdb, hub)
	} else {
		log.Printf("redis unavailable, falling back to in-process broadcast")
		sink = hub
	}

	eng := engine.New(st, sink)
	// Failure to obtain the initial snapshot is the one fatal startup
	// condition.
	if err := eng.Load(ctx); err != nil {
		log.Fatalf("load projects: %v", err)
	}
	eng.StartSweeper(ctx)

	// Audit trail for issued tickets, fed over RabbitMQ.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg))
	projectHandler := handler.NewProjectHandler(eng)
	router.RegisterViewer(e, projectHandler, handler.NewReservationHandler(eng), handler.NewWSHandler(eng, hub), rdb)
	router.RegisterAdmin(e, projectHandler, cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	// Flush the snapshot on shutdown so at most one unsaved mutation is
	// ever at risk while running, and none after a clean exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := eng.Flush(shutdownCtx); err != nil {
		log.Printf("flush projects: %v", err)
	}
}
