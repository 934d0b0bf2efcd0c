// errackd runs the configured auto-ack jobs against one or more error stores and
// serves the admin API and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/remiges-tech/errack/admin"
	"github.com/remiges-tech/errack/config"
	"github.com/remiges-tech/errack/errack"
	"github.com/remiges-tech/errack/logger"
	"github.com/remiges-tech/errack/metrics"
	"github.com/remiges-tech/errack/wscutils"
	"github.com/remiges-tech/logharbour/logharbour"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configSource := flag.String("configSource", "file", "The source of the configuration: file or rigel")
	configFile := flag.String("configFile", "./config.json", "Path to the JSON config file")
	etcdEndpoints := flag.String("etcdEndpoints", "localhost:2379", "Comma-separated list of etcd endpoints")
	rigelApp := flag.String("rigelApp", "errack", "Rigel app name")
	rigelModule := flag.String("rigelModule", "errackd", "Rigel module name")
	rigelVersion := flag.Int("rigelVersion", 1, "Rigel schema version")
	rigelConfig := flag.String("rigelConfig", "default", "Rigel config name")
	rigelKey := flag.String("rigelKey", config.DefaultRigelKey, "Rigel key holding the JSON config")
	errorTypesFile := flag.String("errorTypesFile", "", "Optional YAML file mapping error codes to message ids")
	pgxLogLevel := flag.String("pgxLogLevel", "warn", "pgx trace level: trace, debug, info, warn, error or none")
	flag.Parse()

	var source config.Config
	switch *configSource {
	case "file":
		source = &config.File{ConfigFilePath: *configFile}
	case "rigel":
		r, err := config.NewRigel(config.RigelParams{
			EtcdEndpoints: *etcdEndpoints,
			App:           *rigelApp,
			Module:        *rigelModule,
			Version:       *rigelVersion,
			ConfigName:    *rigelConfig,
			Key:           *rigelKey,
		})
		if err != nil {
			log.Fatalf("Failed to create rigel config source: %v", err)
		}
		source = r
	default:
		log.Fatalf("Unknown configuration source: %s", *configSource)
	}

	var cfg config.AppConfig
	if err := config.LoadAppConfig(source, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *errorTypesFile != "" {
		f, err := os.Open(*errorTypesFile)
		if err != nil {
			log.Fatalf("Failed to open error types file: %v", err)
		}
		err = wscutils.LoadErrorTypes(f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to load error types: %v", err)
		}
	}

	traceLevel, err := tracelog.LogLevelFromString(*pgxLogLevel)
	if err != nil {
		log.Fatalf("Invalid pgx log level: %v", err)
	}

	lh := logger.New(cfg.AppName, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lh, logger.NewLogLevel(traceLevel)); err != nil {
		lh.Error(err).LogActivity("errackd stopped with an error", nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.AppConfig, lh *logharbour.Logger, traceLevel *logger.LogLevel) error {
	units := errack.Units{}
	for name, dsn := range cfg.PersistenceUnits {
		pool, err := openPool(ctx, dsn, lh, traceLevel)
		if err != nil {
			return fmt.Errorf("persistence unit %s: %w", name, err)
		}
		defer pool.Close()

		if cfg.Migrate {
			if err := migrate(ctx, pool); err != nil {
				return fmt.Errorf("persistence unit %s: %w", name, err)
			}
			lh.Info().LogActivity("Schema migrated", map[string]any{"unit": name})
		}
		units[name] = pool
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			lh.Warn().LogActivity("Redis unavailable, run statuses will not be recorded until it recovers", map[string]any{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
		}
	}
	status := errack.NewStatusStore(redisClient)

	m := metrics.NewPrometheusMetrics()
	errack.RegisterMetrics(m)

	registry := errack.DefaultRegistry()
	runner := errack.NewRunner(status, lh, &errack.RunnerConfig{
		RetryInterval: cfg.RetryIntervalDuration(),
		MaxRetries:    cfg.MaxRetries,
	})
	for _, job := range cfg.Jobs {
		rule, err := registry.Get(job.ErrorType)
		if err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
		cmd := errack.NewAutoAckCommand(rule, units, lh, errack.WithMetrics(m))
		if err := runner.AddJob(errack.RunnerJob{Name: job.Name, Command: cmd, Params: job.Params}); err != nil {
			return err
		}
	}

	var servers []*http.Server
	if cfg.MetricsPort != "" {
		servers = append(servers, m.NewMetricsServer(cfg.MetricsPort))
	}
	if cfg.AdminPort != "" {
		h := admin.NewHandler(registry, runner, status, lh)
		servers = append(servers, &http.Server{Addr: ":" + cfg.AdminPort, Handler: admin.NewRouter(h, lh)})
	}
	serverErrs := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			lh.Info().LogActivity("Listening", map[string]any{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrs <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		lh.Info().LogActivity("Starting runner", map[string]any{
			"instance": status.InstanceID(),
			"jobs":     runner.Jobs(),
			"units":    units.Names(),
		})
		runner.Run(runCtx)
		lh.Info().LogActivity("Runner finished", nil)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		lh.Info().LogActivity("Shutdown signal received", nil)
	case runErr = <-serverErrs:
	case <-runnerDone:
		// Single-run jobs are done; keep serving the admin API until told to stop.
		if len(servers) > 0 {
			select {
			case <-ctx.Done():
			case runErr = <-serverErrs:
			}
		}
	}

	cancelRun()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lh.Warn().LogActivity("Server shutdown failed", map[string]any{"addr": srv.Addr, "error": err.Error()})
		}
	}
	<-runnerDone
	return runErr
}

func openPool(ctx context.Context, dsn string, lh *logharbour.Logger, traceLevel *logger.LogLevel) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}
	poolConfig.ConnConfig.Tracer = logger.NewPgxTracer(lh, traceLevel)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return pool, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()
	return errack.MigrateDatabase(ctx, conn.Conn())
}
