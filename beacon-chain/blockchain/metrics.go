package blockchain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// forkChoiceErrorsTotal counts non-fatal fork-choice errors: the head
	// stays at its previous value and the next tick retries.
	forkChoiceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_orchestrator_forkchoice_errors_total",
		Help: "Non-fatal errors returned by the fork-choice engine while processing a block.",
	})
	blocksProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_orchestrator_blocks_processed_total",
		Help: "Blocks that completed state-transition, fork-choice insertion and persistence.",
	})
	pipelineErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_orchestrator_pipeline_errors_total",
		Help: "Errors by stage while driving a block through the pipeline orchestrator.",
	}, []string{"stage"})
)
