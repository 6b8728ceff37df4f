package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"advisor-chat-be/internal/bootstrap"
	"advisor-chat-be/internal/config"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/model"
	"advisor-chat-be/internal/server"
	"advisor-chat-be/internal/tracer"
	"advisor-chat-be/pkg/database"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(ctx, cfg.Telemetry)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	// 3. Initialize Database
	gormDB, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := gormDB.AutoMigrate(model.All()...); err != nil {
			log.Panicf("AutoMigrate failed: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 5. Restore the workspace before serving anything
	snap := container.Persistence.Restore(ctx)
	container.Workspace.Load(snap)
	for _, category := range entity.Categories {
		container.Metrics.SetSources(string(category), len(container.Workspace.Sources(category)))
	}

	// 6. Run server, event hub and mirror consumer until a signal arrives
	srv := server.New(cfg, container)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		container.WebSocketHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Println("Background: Starting Consumer Service...")
		return container.ConsumerService.Consume(gctx)
	})
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Exited with error: %v", err)
	}

	// Persist the final state once the mirror consumer has stopped.
	select {
	case <-container.ConsumerService.Done():
	case <-time.After(5 * time.Second):
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Persistence.Sync(flushCtx, container.Workspace.Snapshot()); err != nil {
		log.Printf("Final workspace sync failed: %v", err)
	}
}
