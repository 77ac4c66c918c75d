// Package validation checks configuration values and service payloads
// against the service contract.
package validation

import (
	"fmt"
	"strings"

	"xolium-sdk/internal/sdkerr"
)

// Issue is a single validation failure at a dotted field path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Issues collects validation failures. A nil or empty Issues means valid.
type Issues []Issue

func (is *Issues) add(path, format string, args ...any) {
	*is = append(*is, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (is *Issues) merge(prefix string, other Issues) {
	for _, i := range other {
		*is = append(*is, Issue{Path: joinPath(prefix, i.Path), Message: i.Message})
	}
}

// OK reports whether there are no issues.
func (is Issues) OK() bool {
	return len(is) == 0
}

func (is Issues) String() string {
	parts := make([]string, len(is))
	for i, issue := range is {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// InvalidInput converts issues into an INVALID_INPUT error, or nil when valid.
func (is Issues) InvalidInput(message string) error {
	if is.OK() {
		return nil
	}
	return sdkerr.InvalidInput(message, []Issue(is))
}

// ContractMismatch converts issues into a CONTRACT_MISMATCH error, or nil when valid.
func (is Issues) ContractMismatch(message string, details sdkerr.Details) error {
	if is.OK() {
		return nil
	}
	if details == nil {
		details = sdkerr.Details{}
	}
	details["issues"] = []Issue(is)
	return sdkerr.ContractMismatch(message, details)
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "." + path
	}
}
