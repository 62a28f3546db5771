package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/giftchaps/phoenix-ea/risk"
)

// DecisionsTotal counts admission outcomes by symbol and reason. Approvals
// carry an empty reason label normalized to "approved".
var DecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "phoenix",
		Subsystem: "admission",
		Name:      "decisions_total",
		Help:      "Total admission decisions by symbol and outcome reason",
	},
	[]string{"symbol", "reason"},
)

// ApprovedRiskR accumulates approved effective risk in R units.
var ApprovedRiskR = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "phoenix",
		Subsystem: "admission",
		Name:      "approved_risk_r_total",
		Help:      "Cumulative approved effective risk in R",
	},
	[]string{"symbol"},
)

// TradesClosed counts released commitments by result.
var TradesClosed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "phoenix",
		Subsystem: "risk",
		Name:      "trades_closed_total",
		Help:      "Closed trades by win/loss result",
	},
	[]string{"symbol", "result"},
)

var ActiveRiskR = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "phoenix",
		Subsystem: "risk",
		Name:      "active_risk_r",
		Help:      "Summed open commitment risk in R",
	},
	[]string{"account"},
)

var RiskUtilization = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "phoenix",
		Subsystem: "risk",
		Name:      "risk_utilization",
		Help:      "Active risk over max concurrent risk",
	},
	[]string{"account"},
)

var ThrottleActive = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "phoenix",
		Subsystem: "risk",
		Name:      "drawdown_throttle_active",
		Help:      "1 while the drawdown throttle halves new risk",
	},
	[]string{"account"},
)

var CanTrade = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "phoenix",
		Subsystem: "risk",
		Name:      "can_trade",
		Help:      "0 once the daily stop is hit, until rollover",
	},
	[]string{"account"},
)

// RecordDecision updates the decision counters.
func RecordDecision(symbol, reason string, approved bool, effectiveRiskR float64) {
	if approved {
		reason = "approved"
		ApprovedRiskR.WithLabelValues(symbol).Add(effectiveRiskR)
	}
	DecisionsTotal.WithLabelValues(symbol, reason).Inc()
}

// RecordClose updates the close counters.
func RecordClose(symbol string, pnlR float64) {
	result := "win"
	if pnlR < 0 {
		result = "loss"
	}
	TradesClosed.WithLabelValues(symbol, result).Inc()
}

// ObserveLedger publishes the gauges from a ledger view.
func ObserveLedger(account string, v risk.View) {
	ActiveRiskR.WithLabelValues(account).Set(v.ActiveRiskR)
	RiskUtilization.WithLabelValues(account).Set(v.RiskUtilization)
	ThrottleActive.WithLabelValues(account).Set(b2f(v.RiskReductionActive))
	CanTrade.WithLabelValues(account).Set(b2f(v.CanTrade))
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
