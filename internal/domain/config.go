package domain

// Commitment is the Solana confirmation level used for RPC reads.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// IsValid checks if the commitment is a known level.
func (c Commitment) IsValid() bool {
	return c == CommitmentProcessed || c == CommitmentConfirmed || c == CommitmentFinalized
}

// String returns the string representation of Commitment.
func (c Commitment) String() string {
	return string(c)
}

// RetryPolicy bounds the exponential-backoff retry of HTTP calls.
type RetryPolicy struct {
	MaxAttempts              int   `json:"maxAttempts" yaml:"max_attempts"`
	BaseDelayMs              int   `json:"baseDelayMs" yaml:"base_delay_ms"`
	MaxDelayMs               int   `json:"maxDelayMs" yaml:"max_delay_ms"`
	RetryableHTTPStatusCodes []int `json:"retryableHttpStatusCodes" yaml:"retryable_http_status_codes"`
}

// IsRetryableStatus reports whether an HTTP status is designated retryable.
func (p RetryPolicy) IsRetryableStatus(status int) bool {
	for _, code := range p.RetryableHTTPStatusCodes {
		if code == status {
			return true
		}
	}
	return false
}

// Route names for the network API.
const (
	RouteHealth         = "health"
	RouteMetrics        = "metrics"
	RouteLiquidityGraph = "liquidityGraph"
)

// Route names for the execution API.
const (
	RouteCredits = "credits"
	RouteQuote   = "quote"
	RouteExecute = "execute"
	RouteYield   = "yield"
)

// NetworkRouteNames lists the routes a network API config must define.
var NetworkRouteNames = []string{RouteHealth, RouteMetrics, RouteLiquidityGraph}

// ExecutionRouteNames lists the routes an execution API config must define.
var ExecutionRouteNames = []string{RouteCredits, RouteQuote, RouteExecute, RouteYield}

// APIConfig describes one HTTP API of the service.
type APIConfig struct {
	BaseURL   string            `json:"baseUrl" yaml:"base_url"`
	TimeoutMs int               `json:"timeoutMs" yaml:"timeout_ms"`
	Headers   map[string]string `json:"headers" yaml:"headers"`
	Routes    map[string]string `json:"routes" yaml:"routes"`
}

// APIs groups the service APIs used by the client.
type APIs struct {
	Network   APIConfig `json:"network" yaml:"network"`
	Execution APIConfig `json:"execution" yaml:"execution"`
}

// ClientConfig is the serialisable part of the SDK client configuration.
// WSEndpoint is optional; it is derived from RPCEndpoint when empty.
type ClientConfig struct {
	RPCEndpoint string      `json:"rpcEndpoint" yaml:"rpc_endpoint"`
	WSEndpoint  string      `json:"wsEndpoint,omitempty" yaml:"ws_endpoint"`
	Commitment  Commitment  `json:"commitment" yaml:"commitment"`
	Retry       RetryPolicy `json:"retry" yaml:"retry"`
	APIs        APIs        `json:"apis" yaml:"apis"`
}
