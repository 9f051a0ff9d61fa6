package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"grantgate/internal/application/lifecycle"
	appports "grantgate/internal/application/ports"
	appstore "grantgate/internal/application/store"
	"grantgate/internal/gateway"
	"grantgate/internal/gateway/metrics"
	"grantgate/internal/identity/cache"
	idports "grantgate/internal/identity/ports"
	"grantgate/internal/identity/resolver"
	userstore "grantgate/internal/identity/store/user"
	jwttoken "grantgate/internal/jwt_token"
	"grantgate/internal/platform/config"
	"grantgate/internal/platform/httpserver"
	"grantgate/internal/platform/logger"
	platformredis "grantgate/internal/platform/redis"
	"grantgate/internal/policy"
	scoreports "grantgate/internal/scoring/ports"
	scorestore "grantgate/internal/scoring/store"
	httptransport "grantgate/internal/transport/http"
	"grantgate/pkg/platform/audit"
	kafkapub "grantgate/pkg/platform/audit/publishers/kafka"
	outboxpub "grantgate/pkg/platform/audit/publishers/outbox"
	auditmemory "grantgate/pkg/platform/audit/store/memory"
	auditpostgres "grantgate/pkg/platform/audit/store/postgres"
)

// main wires dependencies and keeps the server lifecycle small. All business
// logic lives behind the gateway.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pol := config.DefaultPolicy()
	if cfg.PolicyFile != "" {
		loaded, err := config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			log.Error("failed to load policy file", "path", cfg.PolicyFile, "error", err)
			os.Exit(1)
		}
		pol = loaded
	}

	engine, err := policy.NewEngine(pol.Ordering, policy.WithLogger(log))
	if err != nil {
		log.Error("failed to build policy engine", "error", err)
		os.Exit(1)
	}
	machine, err := lifecycle.New(pol.Transitions)
	if err != nil {
		log.Error("failed to build lifecycle machine", "error", err)
		os.Exit(1)
	}

	var (
		users  idports.UserStore
		apps   appports.ApplicationStore
		scores scoreports.ScoreStore
	)
	if cfg.PostgresURL != "" {
		pool, perr := pgxpool.New(ctx, cfg.PostgresURL)
		if perr != nil {
			log.Error("failed to connect to postgres", "error", perr)
			os.Exit(1)
		}
		defer pool.Close()
		users = userstore.NewPostgres(pool)
		apps = appstore.NewPostgres(pool)
		scores = scorestore.NewPostgres(pool)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		users = userstore.NewInMemory()
		apps = appstore.NewInMemory()
		scores = scorestore.NewInMemory()
	}

	resolverOpts := []resolver.Option{resolver.WithLogger(log)}
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		resolverOpts = append(resolverOpts, resolver.WithCache(cache.NewRedis(redisClient.Client), cfg.IdentityCacheTTL))
	} else {
		resolverOpts = append(resolverOpts, resolver.WithCache(cache.NewInMemory(0), cfg.IdentityCacheTTL))
	}
	res, err := resolver.New(users, resolverOpts...)
	if err != nil {
		log.Error("failed to build identity resolver", "error", err)
		os.Exit(1)
	}

	publisher, cleanup, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build audit publisher", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	gw, err := gateway.New(res, users, apps, scores, engine, machine, pol.AreaSet(),
		gateway.WithLogger(log),
		gateway.WithMetrics(metrics.New()),
		gateway.WithAuditPublisher(publisher),
		gateway.WithStoreTimeout(cfg.StoreTimeout),
		gateway.WithRetryPolicy(cfg.RetryAttempts, cfg.RetryBackoff),
	)
	if err != nil {
		log.Error("failed to build gateway", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "grantgate", "grantgate-api")
	handler := httptransport.NewHandler(gw, jwttoken.NewJWTServiceAdapter(jwtService), log)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting grantgate", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildAuditPublisher picks the audit sink: kafka when brokers are
// configured, otherwise a synchronous outbox over postgres or memory.
func buildAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := kafkapub.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic, kafkapub.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return pub, func() { _ = pub.Close() }, nil
	}

	var store audit.Store
	if cfg.PostgresURL != "" {
		pgStore, err := auditpostgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		store = pgStore
	} else {
		store = auditmemory.New()
	}
	pub := outboxpub.New(store, outboxpub.WithLogger(log))
	return pub, func() { _ = pub.Close() }, nil
}
