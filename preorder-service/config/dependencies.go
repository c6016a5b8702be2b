package config

import (
	"context"
	"fmt"

	"github.com/draftea/preorder-system/preorder-service/activities"
	"github.com/draftea/preorder-system/preorder-service/handlers"
	"github.com/draftea/preorder-system/preorder-service/infrastructure"
	"github.com/draftea/preorder-system/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	"go.uber.org/zap"
)

// WorkerDependencies wires everything the saga worker needs
type WorkerDependencies struct {
	Logger         *zap.Logger
	Telemetry      *telemetry.Telemetry
	DB             *sqlx.DB
	TemporalClient client.Client

	PaymentActivities      *activities.PaymentActivities
	InventoryActivities    *activities.InventoryActivities
	FulfillmentActivities  *activities.FulfillmentActivities
	NotificationActivities *activities.NotificationActivities

	SignalRelay *infrastructure.SQSSignalRelay

	telemetryShutdown func()
}

// GatewayDependencies wires everything the HTTP gateway needs
type GatewayDependencies struct {
	Logger         *zap.Logger
	Telemetry      *telemetry.Telemetry
	TemporalClient client.Client
	OrderHandlers  *handlers.OrderHandlers

	telemetryShutdown func()
}

// BuildWorkerDependencies builds the worker dependency container
func BuildWorkerDependencies(ctx context.Context, cfg *Config) (*WorkerDependencies, error) {
	deps := &WorkerDependencies{}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	deps.Logger = logger

	tel, telShutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName + "-worker",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4318"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}
	deps.Telemetry = tel
	deps.telemetryShutdown = telShutdown

	db, err := sqlx.Connect("postgres", cfg.GetDatabaseURL())
	if err != nil {
		telShutdown()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db

	temporalClient, err := newTemporalClient(cfg, logger)
	if err != nil {
		db.Close()
		telShutdown()
		return nil, err
	}
	deps.TemporalClient = temporalClient

	notifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		temporalClient.Close()
		db.Close()
		telShutdown()
		return nil, err
	}

	deps.PaymentActivities = activities.NewPaymentActivities(infrastructure.NewPostgresChargeLedger(db))
	deps.InventoryActivities = activities.NewInventoryActivities(infrastructure.NewPostgresReservationRepository(db))
	deps.FulfillmentActivities = activities.NewFulfillmentActivities()
	deps.NotificationActivities = activities.NewNotificationActivities(notifier)

	relay, err := infrastructure.NewSQSSignalRelay(ctx, cfg.AWS.PartnerEventsQueue, temporalClient, logger)
	if err != nil {
		temporalClient.Close()
		db.Close()
		telShutdown()
		return nil, fmt.Errorf("failed to create partner signal relay: %w", err)
	}
	deps.SignalRelay = relay

	return deps, nil
}

// Close closes worker dependencies
func (d *WorkerDependencies) Close() error {
	if d.TemporalClient != nil {
		d.TemporalClient.Close()
	}

	var errs []error
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.telemetryShutdown != nil {
		d.telemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}
	return nil
}

// BuildGatewayDependencies builds the gateway dependency container
func BuildGatewayDependencies(ctx context.Context, cfg *Config) (*GatewayDependencies, error) {
	deps := &GatewayDependencies{}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	deps.Logger = logger

	tel, telShutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName + "-gateway",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4318"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}
	deps.Telemetry = tel
	deps.telemetryShutdown = telShutdown

	temporalClient, err := newTemporalClient(cfg, logger)
	if err != nil {
		telShutdown()
		return nil, err
	}
	deps.TemporalClient = temporalClient

	deps.OrderHandlers = handlers.NewOrderHandlers(temporalClient, cfg.Temporal.TaskQueue)

	return deps, nil
}

// Close closes gateway dependencies
func (d *GatewayDependencies) Close() error {
	if d.TemporalClient != nil {
		d.TemporalClient.Close()
	}
	if d.telemetryShutdown != nil {
		d.telemetryShutdown()
	}
	return nil
}

func newLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.Env == "local" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		return logger, nil
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func newTemporalClient(cfg *Config, logger *zap.Logger) (client.Client, error) {
	tracingInterceptor, err := opentelemetry.NewTracingInterceptor(opentelemetry.TracerOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing interceptor: %w", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:     cfg.Temporal.HostPort,
		Namespace:    cfg.Temporal.Namespace,
		Logger:       telemetry.NewZapLogger(logger),
		Interceptors: []interceptor.ClientInterceptor{tracingInterceptor},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal: %w", err)
	}

	return c, nil
}

func newNotifier(ctx context.Context, cfg *Config, logger *zap.Logger) (activities.Notifier, error) {
	if cfg.Notifications.Driver == "sns" {
		notifier, err := infrastructure.NewSNSNotifier(ctx, cfg.AWS.NotificationsTopic)
		if err != nil {
			return nil, fmt.Errorf("failed to create SNS notifier: %w", err)
		}
		return notifier, nil
	}
	return infrastructure.NewLogNotifier(logger), nil
}
