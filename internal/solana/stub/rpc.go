package stub

import (
	"context"
	"sync/atomic"

	"xolium-sdk/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	HealthErr error
	Slot      atomic.Int64
	Version   solana.Version
	Balances  map[string]uint64
	Accounts  map[string]*solana.AccountInfo
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Version:  solana.Version{SolanaCore: "stub", FeatureSet: 1},
		Balances: make(map[string]uint64),
		Accounts: make(map[string]*solana.AccountInfo),
	}
}

// GetHealth returns HealthErr.
func (c *RPCClient) GetHealth(_ context.Context) error {
	return c.HealthErr
}

// GetSlot returns the stored slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	return c.Slot.Load(), nil
}

// GetVersion returns the stored version.
func (c *RPCClient) GetVersion(_ context.Context) (*solana.Version, error) {
	v := c.Version
	return &v, nil
}

// GetBalance returns the stored balance, zero for unknown accounts.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	return c.Balances[pubkey], nil
}

// GetAccountInfo returns the stored account, nil for unknown accounts.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	return c.Accounts[pubkey], nil
}
