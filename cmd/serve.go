// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-router/internal/config"
	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/jobs"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring/prometheus"
	"github.com/canonical/tenant-router/internal/pool"
	"github.com/canonical/tenant-router/internal/provisioner"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/resolver"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
	"github.com/canonical/tenant-router/migrations"
	"github.com/canonical/tenant-router/pkg/status"
	"github.com/canonical/tenant-router/pkg/tenant"
	"github.com/canonical/tenant-router/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenant-router", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	pgxConfig, err := pgx.ParseConfig(specs.DSN)
	if err != nil {
		return fmt.Errorf("DSN validation failed, shutting down, err: %v", err)
	}
	// The database behind DSN hosts the registry and doubles as the default
	// binding for platform scoped work.
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
	pools.WarmUp(context.Background())
	defer pools.Shutdown()

	router := db.NewRouter(pools, defaultBinding, tracer, monitor, logger)

	adminDSN := specs.AdminDSN
	if adminDSN == "" {
		adminDSN = specs.DSN
	}
	prov := provisioner.NewProvisioner(
		reg,
		provisioner.NewPostgresCreator(adminDSN, logger),
		provisioner.NewGooseMigrator(migrations.TenantDB(), logger),
		specs.ProvisioningTimeout,
		tracer,
		monitor,
		logger,
	)

	bindingDefaults := tenant.BindingDefaults{
		Host:     pgxConfig.Host,
		Port:     int(pgxConfig.Port),
		Username: pgxConfig.User,
		Password: pgxConfig.Password,
	}
	tenantService := tenant.NewService(reg, prov, pools, bindingDefaults, tracer, monitor, logger)
	tenantAPI := tenant.NewAPI(tenantService, logger)
	statusAPI := status.NewAPI(reg, tracer, monitor, logger)

	tenantResolver := resolver.NewResolver(
		reg,
		resolver.NewHeaderPrincipalSource(),
		specs.ResolutionOrder,
		defaultBinding,
		tracer,
		monitor,
		logger,
	)
	resolverMdw := resolver.NewMiddleware(tenantResolver, tracer, monitor, logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     specs.RedisAddr,
		Password: specs.RedisPassword,
		DB:       specs.RedisDB,
	})
	defer rdb.Close()
	dispatcher := jobs.NewDispatcher(rdb, specs.JobStream, tracer, monitor, logger)

	webRouter := web.NewRouter(
		tenantAPI,
		statusAPI,
		resolverMdw,
		appHandler(router, dispatcher),
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      webRouter,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

// appHandler is the tenant scoped surface mounted behind the resolver
// middleware. Every query below runs against whatever database the ambient
// tenant context routes to.
func appHandler(router db.RouterInterface, dispatcher jobs.DispatcherInterface) http.Handler {
	mux := chi.NewRouter()

	mux.Get("/api/v0/whoami", func(w http.ResponseWriter, r *http.Request) {
		tc, _ := tenantctx.GetTenant(r.Context())

		row, err := router.QueryRow(r.Context(), "SELECT current_database()")
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		var database string
		if err := row.Scan(&database); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"tenant_id": tc.TenantID,
			"binding":   tc.BindingName,
			"database":  database,
		})
	})

	mux.Post("/api/v0/jobs/{task}", func(w http.ResponseWriter, r *http.Request) {
		var payload json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&payload)
		}

		id, err := dispatcher.Enqueue(r.Context(), chi.URLParam(r, "task"), payload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": id})
	})

	return mux
}
