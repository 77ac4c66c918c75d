package solana

import (
	"net/url"
	"strings"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/sdkerr"
)

// ConnectionConfig selects the RPC node and read commitment.
type ConnectionConfig struct {
	RPCEndpoint string
	Commitment  domain.Commitment
	Retry       domain.RetryPolicy // zero value selects DefaultRetryPolicy
}

// NewConnection validates cfg and returns an RPC client bound to it.
func NewConnection(cfg ConnectionConfig, opts ...ClientOption) (*HTTPClient, error) {
	if cfg.RPCEndpoint == "" {
		return nil, sdkerr.InvalidInputDetails("rpcEndpoint must be a non-empty string", sdkerr.Details{
			"rpcEndpoint": cfg.RPCEndpoint,
		})
	}
	if cfg.Commitment == "" {
		return nil, sdkerr.InvalidInputDetails("commitment must be a non-empty string", sdkerr.Details{
			"commitment": string(cfg.Commitment),
		})
	}

	base := []ClientOption{WithCommitment(cfg.Commitment)}
	if cfg.Retry.MaxAttempts > 0 {
		base = append(base, WithRetryPolicy(cfg.Retry))
	}
	opts = append(base, opts...)
	return NewHTTPClient(cfg.RPCEndpoint, opts...), nil
}

// WSEndpointFor derives the WebSocket endpoint of an RPC endpoint:
// http becomes ws and https becomes wss.
func WSEndpointFor(rpcEndpoint string) (string, error) {
	u, err := url.Parse(rpcEndpoint)
	if err != nil {
		return "", sdkerr.InvalidInputDetails("rpcEndpoint is not a valid URL", sdkerr.Details{
			"rpcEndpoint": rpcEndpoint,
		})
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", sdkerr.InvalidInputDetails("rpcEndpoint must use http(s)", sdkerr.Details{
			"rpcEndpoint": rpcEndpoint,
		})
	}
	return u.String(), nil
}
