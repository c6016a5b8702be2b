package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftea/preorder-system/preorder-service/activities"
	"github.com/draftea/preorder-system/preorder-service/config"
	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/draftea/preorder-system/preorder-service/handlers"
	preorderworkflow "github.com/draftea/preorder-system/preorder-service/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting %s worker in %s environment\n", cfg.ServiceName, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := config.BuildWorkerDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Printf("Error closing dependencies: %v", err)
		}
	}()

	w := worker.New(deps.TemporalClient, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(preorderworkflow.PreOrder, workflow.RegisterOptions{
		Name: domain.WorkflowName,
	})
	activities.RegisterAll(w,
		deps.PaymentActivities,
		deps.InventoryActivities,
		deps.FulfillmentActivities,
		deps.NotificationActivities,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Logger.Info("Worker listening", zap.String("task_queue", cfg.Temporal.TaskQueue))
		return w.Run(workerStopCh(ctx))
	})

	g.Go(func() error {
		deps.Logger.Info("Health server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		deps.Logger.Info("Partner signal relay started")
		if err := deps.SignalRelay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		deps.Logger.Fatal("Worker failed", zap.Error(err))
	}

	fmt.Printf("%s worker stopped\n", cfg.ServiceName)
}

// workerStopCh adapts context cancellation to the worker's stop channel
func workerStopCh(ctx context.Context) <-chan interface{} {
	ch := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", handlers.NewMetricsHandler())

	return r
}
