package domain

// PriorityRoutingPolicy controls compute-unit price bidding for submission.
type PriorityRoutingPolicy struct {
	Enabled                          bool  `json:"enabled"`
	MaxComputeUnitPriceMicroLamports int64 `json:"maxComputeUnitPriceMicroLamports"`
}

// MevPolicy controls MEV-aware submission.
type MevPolicy struct {
	MevAware     bool `json:"mevAware"`
	AllowBackrun bool `json:"allowBackrun"`
}

// ExecutionCreditBalance is the account's remaining execution credits.
type ExecutionCreditBalance struct {
	Credits int64 `json:"credits"`
	AsOfMs  int64 `json:"asOfMs"`
}

// ExecutionQuoteRequest asks the service to price a swap.
// Amounts are base-unit integers encoded as decimal strings.
type ExecutionQuoteRequest struct {
	FromMint    string                `json:"fromMint"`
	ToMint      string                `json:"toMint"`
	AmountIn    string                `json:"amountIn"`
	SlippageBps int64                 `json:"slippageBps"`
	Priority    PriorityRoutingPolicy `json:"priority"`
	Mev         MevPolicy             `json:"mev"`
}

// ExecutionQuoteResponse is a priced, expiring route.
type ExecutionQuoteResponse struct {
	RouteID           string `json:"routeId"`
	ExpectedAmountOut string `json:"expectedAmountOut"`
	MinAmountOut      string `json:"minAmountOut"`
	PriceImpactBps    int64  `json:"priceImpactBps"`
	ExpiresAtMs       int64  `json:"expiresAtMs"`
}

// ExecutionExecuteRequest submits a previously quoted route.
// ExplicitOptIn must be true.
type ExecutionExecuteRequest struct {
	RouteID       string                `json:"routeId"`
	SignerPubkey  string                `json:"signerPubkey"`
	Priority      PriorityRoutingPolicy `json:"priority"`
	Mev           MevPolicy             `json:"mev"`
	ExplicitOptIn bool                  `json:"explicitOptIn"`
}

// ExecutionExecuteResponse carries the submitted transaction signature.
type ExecutionExecuteResponse struct {
	Signature     string `json:"signature"`
	SubmittedAtMs int64  `json:"submittedAtMs"`
}
