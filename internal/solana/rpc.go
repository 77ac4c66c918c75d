package solana

import "context"

// RPCClient defines the Solana RPC HTTP reads used by the SDK.
type RPCClient interface {
	// GetHealth returns nil when the node reports itself healthy.
	GetHealth(ctx context.Context) error

	// GetSlot retrieves the current slot at the client commitment.
	GetSlot(ctx context.Context) (int64, error)

	// GetVersion retrieves the node software version.
	GetVersion(ctx context.Context) (*Version, error)

	// GetBalance retrieves the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetAccountInfo retrieves account info. Returns nil if not found.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// Version is the node software version.
type Version struct {
	SolanaCore string `json:"solana-core"`
	FeatureSet uint32 `json:"feature-set"`
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
