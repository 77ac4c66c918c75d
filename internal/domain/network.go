package domain

// NetworkHealthOK is the only accepted health status.
const NetworkHealthOK = "ok"

// NetworkHealth is the service health probe response.
type NetworkHealth struct {
	Status      string `json:"status"`
	TimestampMs int64  `json:"timestampMs"`
}

// NetworkMetrics is the service's view of chain progress.
// Slot and LatencyMs are optional.
type NetworkMetrics struct {
	TimestampMs int64  `json:"timestampMs"`
	Slot        *int64 `json:"slot,omitempty"`
	LatencyMs   *int64 `json:"latencyMs,omitempty"`
}
