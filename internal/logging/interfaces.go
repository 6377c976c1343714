// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	Security() SecurityLoggerInterface
	Sync() error
}

// SecurityLoggerInterface emits audit events that must survive log level filtering.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	TenantCreated(tenantID, databaseName string)
	TenantRetired(tenantID string)
	ResolutionDenied(reason, detail string)
}
