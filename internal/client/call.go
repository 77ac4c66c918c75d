package client

import (
	"context"

	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/transport"
	"xolium-sdk/internal/validation"
)

// call performs req and strictly decodes the response into T. Any decode
// or contract failure is reported as CONTRACT_MISMATCH with mismatch as
// its message.
func call[T any](
	ctx context.Context,
	r *transport.Requester,
	req transport.Request,
	mismatch string,
	check func(T) validation.Issues,
	required ...string,
) (T, error) {
	var zero T

	body, err := r.Do(ctx, req)
	if err != nil {
		return zero, err
	}

	var out T
	details := sdkerr.Details{"service": r.Service(), "route": req.Route}
	if err := validation.DecodeStrict(body, &out, required...).ContractMismatch(mismatch, details); err != nil {
		return zero, err
	}
	if err := check(out).ContractMismatch(mismatch, details); err != nil {
		return zero, err
	}
	return out, nil
}
