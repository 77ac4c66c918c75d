package domain

// YieldOperationRequest asks the service to open a yield position.
// ExplicitOptIn must be true.
type YieldOperationRequest struct {
	StrategyID     string  `json:"strategyId"`
	NotionalUSD    float64 `json:"notionalUsd"`
	RiskCeilingBps int64   `json:"riskCeilingBps"`
	ExposureCapUSD float64 `json:"exposureCapUsd"`
	ExplicitOptIn  bool    `json:"explicitOptIn"`
}

// YieldOperationResult acknowledges an accepted yield operation.
type YieldOperationResult struct {
	OperationID  string `json:"operationId"`
	AcceptedAtMs int64  `json:"acceptedAtMs"`
}
