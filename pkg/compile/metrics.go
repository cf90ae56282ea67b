package compile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "unity_mcp",
	Subsystem: "compile",
	Name:      "runs_total",
	Help:      "Compilation runs by outcome.",
}, []string{"outcome"})
