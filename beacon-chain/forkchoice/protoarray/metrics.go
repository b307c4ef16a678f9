package protoarray

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reorgsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_forkchoice_reorgs_total",
		Help: "Number of times UpdateHead picked a new head whose ancestry diverges from the previous head.",
	})
	reorgDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "beacon_forkchoice_reorg_distance_slots",
		Help:    "Slot distance between the old head and the common ancestor with the new head, on reorg.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})
	headSlotGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_forkchoice_head_slot",
		Help: "Slot of the current fork-choice head.",
	})
)
