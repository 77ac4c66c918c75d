package sdkerr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := ExecutionDenied("no route", Details{"maxHops": 3})

	assert.True(t, errors.Is(err, ErrExecutionDenied))
	assert.False(t, errors.Is(err, ErrInvalidInput))

	wrapped := fmt.Errorf("compute: %w", err)
	assert.True(t, errors.Is(wrapped, ErrExecutionDenied))
	assert.Equal(t, CodeExecutionDenied, CodeOf(wrapped))

	var sdkErr *Error
	require.True(t, errors.As(wrapped, &sdkErr))
	assert.Equal(t, 3, sdkErr.Details["maxHops"])
}

func TestInvalidInput_Issues(t *testing.T) {
	err := InvalidInput("bad policy", []string{"maxHops"})
	assert.Equal(t, CodeInvalidInput, err.Code)
	assert.Equal(t, []string{"maxHops"}, err.Details["issues"])

	noIssues := InvalidInput("bad policy", nil)
	_, ok := noIssues.Details["issues"]
	assert.False(t, ok)
}

func TestFromUnknown(t *testing.T) {
	t.Run("passes through sdk errors", func(t *testing.T) {
		orig := NetworkUnavailable("down", nil)
		got := FromUnknown(fmt.Errorf("wrap: %w", orig), "fallback", nil)
		assert.Same(t, orig, got)
	})

	t.Run("wraps foreign errors", func(t *testing.T) {
		orig := errors.New("boom")
		got := FromUnknown(orig, "fallback", Details{"route": "quote"})
		assert.Equal(t, CodeContractMismatch, got.Code)
		assert.Equal(t, "boom", got.Message)
		assert.Equal(t, "quote", got.Details["route"])
		assert.Contains(t, got.Details, "original")
		assert.True(t, errors.Is(got, orig))
	})

	t.Run("nil uses fallback message", func(t *testing.T) {
		got := FromUnknown(nil, "fallback", nil)
		assert.Equal(t, "fallback", got.Message)
	})
}

func TestError_MarshalJSON(t *testing.T) {
	err := RiskLimitExceeded("notionalUsd exceeds exposureCapUsd", Details{"notionalUsd": 10.0})
	data, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"code":"RISK_LIMIT_EXCEEDED","message":"notionalUsd exceeds exposureCapUsd","details":{"notionalUsd":10}}`, string(data))
	assert.Equal(t, "RISK_LIMIT_EXCEEDED: notionalUsd exceeds exposureCapUsd", err.Error())
}

func TestError_Wrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NetworkUnavailable("Network request failed", Details{"route": "health"}).Wrap(cause)

	assert.True(t, errors.Is(err, ErrNetworkUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, CodeNetworkUnavailable, CodeOf(fmt.Errorf("outer: %w", err)))
}
