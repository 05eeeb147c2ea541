// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RunsStarted            = expvar.NewInt("runs_started")
	RunsCompleted          = expvar.NewInt("runs_completed")
	RunsFailed             = expvar.NewInt("runs_failed")
	RunsCancelled          = expvar.NewInt("runs_cancelled")
	PairsPlanned           = expvar.NewInt("pairs_planned")
	PairsSkipped           = expvar.NewInt("pairs_skipped")
	ExceptionsRaised       = expvar.NewInt("exceptions_raised")
	RecommendationsCreated = expvar.NewInt("recommendations_created")
	AlertsDispatched       = expvar.NewInt("alerts_dispatched")
	AlertsFailed           = expvar.NewInt("alerts_failed")
	EvaluatorErrors        = expvar.NewInt("evaluator_errors")
	RunsArchived           = expvar.NewInt("runs_archived")
)
