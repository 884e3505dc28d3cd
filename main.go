package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"banking-service/api"
	"banking-service/bus"
	"banking-service/commands"
	"banking-service/cqrs"
	"banking-service/domain"
	"banking-service/projection"
	"banking-service/queries"
	"banking-service/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	var repo domain.AccountRepository
	if connStr := os.Getenv("STORAGE_CONNECTION_STRING"); connStr != "" {
		accountsTable := os.Getenv("ACCOUNTS_TABLE")
		if accountsTable == "" {
			log.Fatal("missing ACCOUNTS_TABLE")
		}
		store, err := storage.New(connStr, accountsTable)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		repo = store
	} else {
		log.Info("No storage configured, keeping accounts in memory")
		repo = cqrs.NewInMemoryRepository[*domain.BankAccount]()
	}

	var eventBus cqrs.EventBus
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		opts := bus.Options{
			PrefetchCount:     envInt("BUS_PREFETCH", 0),
			ReconnectInterval: envDur("BUS_RECONNECT_INTERVAL", 5*time.Second),
			MaxPublishRetries: envInt("BUS_PUBLISH_RETRIES", 3),
			PublishRetryDelay: envDur("BUS_PUBLISH_RETRY_DELAY", time.Second),
		}
		b, err := bus.Connect(amqpURL, envString("EVENTS_EXCHANGE", "bank-events"), opts)
		if err != nil {
			log.Fatalf("event bus: %v", err)
		}
		eventBus = b
	} else {
		log.Info("No broker configured, using the in-process event bus")
		eventBus = cqrs.NewInMemoryEventBus()
	}

	proj := projection.NewAccountProjection()
	var consumer cqrs.EventHandler = proj
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		rc := redis.NewClient(redisOpts)
		consumer = projection.NewNotifier(proj, rc, envString("UPDATES_CHANNEL", "account-updates"))
	}

	ctx := context.Background()
	for _, eventType := range []string{
		domain.EventAccountOpened,
		domain.EventAccountClosed,
		domain.EventFundsWithdrawn,
		domain.EventFundsDeposited,
		domain.EventFundsTransferred,
	} {
		if err := eventBus.Subscribe(ctx, eventType, consumer); err != nil {
			log.Fatalf("subscribe %s: %v", eventType, err)
		}
	}

	cmdDispatcher := cqrs.NewCommandDispatcher()
	cmdDispatcher.Register(domain.CmdOpenAccount, commands.NewOpenAccountHandler(repo, eventBus))
	cmdDispatcher.Register(domain.CmdCloseAccount, commands.NewCloseAccountHandler(repo, eventBus))
	cmdDispatcher.Register(domain.CmdWithdrawFunds, commands.NewWithdrawFundsHandler(repo, eventBus))
	cmdDispatcher.Register(domain.CmdDepositFunds, commands.NewDepositFundsHandler(repo, eventBus))
	cmdDispatcher.Register(domain.CmdTransferFunds, commands.NewTransferFundsHandler(repo, eventBus))

	queryDispatcher := cqrs.NewQueryDispatcher()
	queryDispatcher.Register(domain.QueryGetAllTransactions, queries.NewGetAllTransactionsHandler(proj))

	var auth api.Authenticator
	if os.Getenv("AUTH0_TEST_MODE") == "1" {
		auth = api.NewAuth(nil, "", "")
	} else if authDomain := os.Getenv("AUTH0_DOMAIN"); authDomain != "" {
		jwtAudience := os.Getenv("AUTH0_AUDIENCE")
		if jwtAudience == "" {
			log.Fatal("missing AUTH0_AUDIENCE")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", authDomain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, jwtAudience, "https://"+authDomain+"/")
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, cmdDispatcher, queryDispatcher, auth)

	listenAddr := ":3000"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}
