package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider-call accounting. Counters are the only shared state the gateway
// keeps and they are safe under concurrent access.
var (
	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thoughtcap_provider_calls_total",
		Help: "Outbound LLM provider calls by provider and operation.",
	}, []string{"provider", "op"})

	providerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thoughtcap_provider_failures_total",
		Help: "Failed LLM provider calls by provider and operation.",
	}, []string{"provider", "op"})

	providerFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thoughtcap_provider_fallbacks_total",
		Help: "Times the gateway fell through to a secondary provider.",
	}, []string{"op"})
)
