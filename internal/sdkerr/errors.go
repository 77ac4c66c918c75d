// Package sdkerr defines the typed error returned by every SDK operation.
package sdkerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Code classifies an SDK failure.
type Code string

const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeNetworkUnavailable Code = "NETWORK_UNAVAILABLE"
	CodeExecutionDenied    Code = "EXECUTION_DENIED"
	CodeRiskLimitExceeded  Code = "RISK_LIMIT_EXCEEDED"
	CodeContractMismatch   Code = "CONTRACT_MISMATCH"
	CodeUnauthorizedSigner Code = "UNAUTHORIZED_SIGNER"
)

// Details carries structured diagnostics for an Error.
type Details map[string]any

// Error is the typed SDK failure.
type Error struct {
	Code    Code
	Message string
	Details Details
	cause   error
}

// Sentinels for errors.Is matching by code.
var (
	ErrInvalidInput       = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNetworkUnavailable = &Error{Code: CodeNetworkUnavailable, Message: "network unavailable"}
	ErrExecutionDenied    = &Error{Code: CodeExecutionDenied, Message: "execution denied"}
	ErrRiskLimitExceeded  = &Error{Code: CodeRiskLimitExceeded, Message: "risk limit exceeded"}
	ErrContractMismatch   = &Error{Code: CodeContractMismatch, Message: "contract mismatch"}
	ErrUnauthorizedSigner = &Error{Code: CodeUnauthorizedSigner, Message: "unauthorized signer"}
)

// New creates an Error. A nil details map is replaced by an empty one.
func New(code Code, message string, details Details) *Error {
	if details == nil {
		details = Details{}
	}
	return &Error{Code: code, Message: message, Details: details}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Unwrap returns the error this one was built from, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// InvalidInput reports a validation failure with its issue list.
func InvalidInput(message string, issues any) *Error {
	details := Details{}
	if issues != nil {
		details["issues"] = issues
	}
	return New(CodeInvalidInput, message, details)
}

// InvalidInputDetails reports a validation failure with arbitrary details.
func InvalidInputDetails(message string, details Details) *Error {
	return New(CodeInvalidInput, message, details)
}

// NetworkUnavailable reports an exhausted or non-retryable request.
func NetworkUnavailable(message string, details Details) *Error {
	return New(CodeNetworkUnavailable, message, details)
}

// ExecutionDenied reports a legitimate refusal, e.g. no route under policy.
func ExecutionDenied(message string, details Details) *Error {
	return New(CodeExecutionDenied, message, details)
}

// RiskLimitExceeded reports a request outside its own risk bounds.
func RiskLimitExceeded(message string, details Details) *Error {
	return New(CodeRiskLimitExceeded, message, details)
}

// ContractMismatch reports a response that does not match its schema.
func ContractMismatch(message string, details Details) *Error {
	return New(CodeContractMismatch, message, details)
}

// UnauthorizedSigner reports a signer the client is not bound to.
func UnauthorizedSigner(message string, details Details) *Error {
	return New(CodeUnauthorizedSigner, message, details)
}

// FromUnknown converts any error into an *Error.
// An *Error anywhere in the chain is returned as is; anything else becomes
// CONTRACT_MISMATCH with the original recorded under details["original"].
func FromUnknown(err error, fallbackMessage string, details Details) *Error {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr
	}

	merged := Details{}
	for k, v := range details {
		merged[k] = v
	}
	message := fallbackMessage
	if err != nil {
		message = err.Error()
		merged["original"] = serializeError(err)
	}

	e := New(CodeContractMismatch, message, merged)
	e.cause = err
	return e
}

// Wrap returns a copy of e that unwraps to cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr.Code
	}
	return ""
}

// MarshalJSON renders the error for logs and CLI output.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    Code    `json:"code"`
		Message string  `json:"message"`
		Details Details `json:"details,omitempty"`
	}{e.Code, e.Message, e.Details})
}

func serializeError(err error) map[string]any {
	return map[string]any{
		"type":    fmt.Sprintf("%T", err),
		"message": err.Error(),
	}
}
