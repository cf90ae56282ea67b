package unity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	connectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unity_mcp",
		Subsystem: "bridge",
		Name:      "connects_total",
		Help:      "Connection attempts to the Unity editor bridge by outcome.",
	}, []string{"outcome"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unity_mcp",
		Subsystem: "bridge",
		Name:      "commands_total",
		Help:      "Commands sent to the Unity editor bridge by command and outcome.",
	}, []string{"command", "outcome"})
)
