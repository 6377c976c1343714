// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-router/internal/config"
	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/jobs"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring/prometheus"
	"github.com/canonical/tenant-router/internal/pool"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "worker consumes the background job stream",
	Long:  `Consume the job stream and run each job under its tenant's database context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenant-router-worker", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	pgxConfig, err := pgx.ParseConfig(specs.DSN)
	if err != nil {
		return fmt.Errorf("DSN validation failed, shutting down, err: %v", err)
	}
	defaultBinding := pgxConfig.Database

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		AcquireTimeout:  specs.DBAcquireTimeout,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(defaultBinding, dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()

	reg := registry.NewRegistry(dbClient, tracer, monitor, logger)

	if err := reg.EnsureDefaultBinding(context.Background(), &types.DatabaseBinding{
		DatabaseName: defaultBinding,
		Host:         pgxConfig.Host,
		Port:         int(pgxConfig.Port),
		Username:     pgxConfig.User,
		Password:     pgxConfig.Password,
	}); err != nil {
		return fmt.Errorf("failed to register default binding: %v", err)
	}

	pools := pool.NewManager(reg, dbConfig, tracer, monitor, logger)
	pools.Seed(defaultBinding, dbClient)
	defer pools.Shutdown()

	router := db.NewRouter(pools, defaultBinding, tracer, monitor, logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     specs.RedisAddr,
		Password: specs.RedisPassword,
		DB:       specs.RedisDB,
	})
	defer rdb.Close()

	hostname, _ := os.Hostname()
	consumer := fmt.Sprintf("%s-%s", hostname, uuid.NewString())

	worker := jobs.NewWorker(
		rdb,
		specs.JobStream,
		specs.JobGroup,
		consumer,
		reg,
		defaultBinding,
		tracer,
		monitor,
		logger,
	)

	worker.Register("sweep", sweepHandler(router))
	worker.Register("sweep-all", func(ctx context.Context, job *jobs.Job) error {
		return worker.ForEachReadyTenant(ctx, func(ctx context.Context, _ *types.DatabaseBinding) error {
			return sweep(ctx, router, job.ID)
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Security().SystemStartup()
	err = worker.Run(ctx)
	logger.Security().SystemShutdown()
	return err
}

// sweepHandler records a sweep marker in the database of the job's tenant.
func sweepHandler(router db.RouterInterface) jobs.HandlerFunc {
	return func(ctx context.Context, job *jobs.Job) error {
		return sweep(ctx, router, job.ID)
	}
}

func sweep(ctx context.Context, router db.RouterInterface, jobID string) error {
	stmt, err := router.Statement(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	_, err = stmt.Insert("sweep_markers").
		Columns("id", "task").
		Values(id.String(), "sweep").
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to record sweep marker for job %s: %w", jobID, err)
	}
	return nil
}
