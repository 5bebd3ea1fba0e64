package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YammiGb/lechon-orders/internal/adapter/ledger"
	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/adapter/postgres"
	"github.com/YammiGb/lechon-orders/internal/adapter/rabbitmq"
	"github.com/YammiGb/lechon-orders/internal/app/availability"
	"github.com/YammiGb/lechon-orders/internal/app/order"
	"github.com/YammiGb/lechon-orders/internal/app/session"
	"github.com/YammiGb/lechon-orders/internal/app/verification"
	"github.com/YammiGb/lechon-orders/internal/config"

	amqpAdapter "github.com/YammiGb/lechon-orders/internal/adapter/amqp"
	httpAdapter "github.com/YammiGb/lechon-orders/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: order-service, verification-service, notification-subscriber")
	port := flag.Int("port", 3000, "HTTP port")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	lgr := logger.New(*mode)

	switch *mode {
	case "order-service":
		runOrderService(ctx, cfg, lgr, *port)

	case "verification-service":
		runVerificationService(ctx, cfg, lgr, *port)

	case "notification-subscriber":
		runNotificationSubscriber(ctx, cfg, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func connectDatabase(ctx context.Context, cfg *config.Config, lgr logger.Logger) postgres.DB {
	if err := postgres.RunMigrations(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	lgr.Info("db_connected", "Connected to PostgreSQL database", "", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})
	return db
}

func runOrderService(ctx context.Context, cfg *config.Config, lgr logger.Logger, port int) {
	db := connectDatabase(ctx, cfg, lgr)
	defer db.Close()

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	orderRepo := postgres.NewOrderRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	menuRepo := postgres.NewMenuRepository(db)
	publisher := rabbitmq.NewPublisher(mqConn)

	resolver := availability.NewResolver(availabilityRepo, lgr)
	checker := availability.NewChecker(resolver, cfg.DebounceDelay())
	sessions := session.NewManager(cfg.Sessions.MaxSessions)
	orderService := order.NewService(orderRepo, resolver, publisher, lgr)

	handler := httpAdapter.NewCheckoutHandler(orderService, resolver, checker, sessions, menuRepo, lgr)
	serveHTTP(httpAdapter.NewCheckoutRouter(handler, lgr), lgr, "Order Service", port)
}

func runVerificationService(ctx context.Context, cfg *config.Config, lgr logger.Logger, port int) {
	db := connectDatabase(ctx, cfg, lgr)
	defer db.Close()

	orderRepo := postgres.NewOrderRepository(db)
	ledgerClient := ledger.NewClient(cfg.Ledger, lgr)
	sessions := session.NewManager(cfg.Sessions.MaxSessions)

	workflow := verification.NewWorkflow(orderRepo, ledgerClient, lgr)
	handler := httpAdapter.NewVerificationHandler(workflow, sessions, lgr)
	serveHTTP(httpAdapter.NewVerificationRouter(handler, lgr), lgr, "Verification Service", port)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn)
	handler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "", nil)

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := consumer.ConsumeOrderCreated(subCtx, handler.HandleOrderCreated); err != nil && subCtx.Err() == nil {
			lgr.Error("consumer_error", "Error consuming order-created events", "", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "", nil)
}

func serveHTTP(handler http.Handler, lgr logger.Logger, name string, port int) {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("%s started on port %d", name, port), "", map[string]interface{}{
		"port": port,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", fmt.Sprintf("Shutting down %s", name), "", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "", nil, err)
	}
}
