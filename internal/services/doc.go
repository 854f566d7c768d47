// Package services implements the business logic layer between HTTP
// handlers and the processing, storage and assistant packages.
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// The package provides these core services:
//
//	- ReportService: turns uploaded movement workbooks into processed reports
//	- ActivityService: persists ETL activity records
//	- HealthService: provides system health checks
package services
