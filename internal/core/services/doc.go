// Package services implements the driving port interfaces.
// Services contain the core business logic - change detection, the
// indexing pipeline, sync orchestration, cost aggregation - and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external provider dependencies.
package services
