// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// SecurityLogger writes audit events at Info level on a dedicated logger so
// they are emitted regardless of the application log level.
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system startup", zap.String("event", "system_startup"))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutdown", zap.String("event", "system_shutdown"))
}

func (s *SecurityLogger) TenantCreated(tenantID, databaseName string) {
	s.l.Info("tenant created",
		zap.String("event", "tenant_created"),
		zap.String("tenant_id", tenantID),
		zap.String("database_name", databaseName),
	)
}

func (s *SecurityLogger) TenantRetired(tenantID string) {
	s.l.Info("tenant retired",
		zap.String("event", "tenant_retired"),
		zap.String("tenant_id", tenantID),
	)
}

func (s *SecurityLogger) ResolutionDenied(reason, detail string) {
	s.l.Warn("tenant resolution denied",
		zap.String("event", "resolution_denied"),
		zap.String("reason", reason),
		zap.String("detail", detail),
	)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.ErrorLevel
	}
}

func NewLogger(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	securityCfg := zap.NewProductionConfig()
	securityCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	securityCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	sl, err := securityCfg.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		SugaredLogger: l.Sugar(),
		security:      &SecurityLogger{l: sl.Named("security")},
	}
}
