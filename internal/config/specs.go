// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	// DSN points at the default database, which hosts the tenant registry.
	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
	DBAcquireTimeout  time.Duration `envconfig:"db_acquire_timeout" default:"5s"`

	// AdminDSN authorizes CREATE DATABASE on the server hosting tenant databases.
	// Defaults to DSN when empty.
	AdminDSN            string        `envconfig:"admin_dsn"`
	ProvisioningTimeout time.Duration `envconfig:"provisioning_timeout" default:"5m"`

	// ResolutionOrder lists resolver strategies, first match wins.
	ResolutionOrder []string `envconfig:"resolution_order" default:"admin,token,domain,header"`

	RedisAddr     string `envconfig:"redis_addr" default:"localhost:6379"`
	RedisPassword string `envconfig:"redis_password"`
	RedisDB       int    `envconfig:"redis_db" default:"0"`
	JobStream     string `envconfig:"job_stream" default:"tenant-router:jobs"`
	JobGroup      string `envconfig:"job_group" default:"tenant-router"`
}
