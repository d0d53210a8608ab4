/**
 * @description
 * This is the main entry point for the clearinghouse-service. It is
 * responsible for initializing all components of the service, including
 * configuration, the database connection, the bank provider client, the
 * message broker, the repository, the core pipeline service, and the HTTP
 * server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/bankclient: Client for the bank settlement providers.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/payrail/clearinghouse-service/internal/api"
	"github.com/payrail/clearinghouse-service/internal/app"
	"github.com/payrail/clearinghouse-service/internal/config"
	"github.com/payrail/clearinghouse-service/internal/domain"
	"github.com/payrail/clearinghouse-service/internal/store"
	"github.com/payrail/clearinghouse-service/pkg/bankclient"
	"github.com/payrail/clearinghouse-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url must be configured\" env=DATABASE_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting clearinghouse-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer for outcome events. A missing broker
	// degrades to a no-op publisher; outcome events are best-effort.
	var eventProducer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; outcome events disabled\" env=RABBITMQ_URL")
		eventProducer = &rabbitmq.EventProducerFallback{}
	} else if producer, prodErr := rabbitmq.NewEventProducer(cfg.RabbitMQURL); prodErr != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", prodErr)
		eventProducer = &rabbitmq.EventProducerFallback{}
	} else {
		defer producer.Close()
		eventProducer = producer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the data access layer and the bank provider client.
	repository := store.NewPostgresRepository(dbpool)
	bankClient := bankclient.NewClient()

	endpoints := map[domain.Provider]string{
		domain.ProviderChase:    cfg.ChaseAPIURL,
		domain.ProviderCitibank: cfg.CitibankAPIURL,
	}

	// Initialize the core pipeline service with its dependencies.
	pipeline := app.NewService(
		repository,
		bankClient,
		eventProducer,
		cfg.OutcomeEventExchange,
		endpoints,
		app.Clearinghouse{AcctNum: cfg.ClearinghouseAcctNum, Token: cfg.ClearinghouseToken},
	)

	// Initialize the API handlers.
	handlers := api.NewTransactionHandlers(pipeline)

	// Optional per-merchant rate limiting, enabled only when both a limit and
	// a reachable Redis are configured.
	if cfg.MerchantRateLimitPerMinute > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; merchant rate limiting disabled\" env=REDIS_URL")
		} else if redisOptions, parseErr := redis.ParseURL(cfg.RedisURL); parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; merchant rate limiting disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx).Err()
			cancelPing()
			if pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; merchant rate limiting disabled\" err=%v", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				handlers.SetMerchantRateLimiter(
					app.NewRedisMerchantRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
					cfg.MerchantRateLimitPerMinute,
				)
				log.Println("level=info component=bootstrap msg=\"redis connected; merchant rate limiting enabled\"")
			}
		}
	}

	if cfg.OpsJWTSecret == "" {
		log.Println("level=warn component=bootstrap msg=\"ops jwt secret missing; ops endpoints not mounted\" env=OPS_JWT_SECRET")
	}

	// Set up the HTTP router and start the server.
	router := api.Routes(handlers, cfg.OpsJWTSecret)
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
