package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// DecodeStrict unmarshals a single JSON value into v, rejecting unknown
// fields, trailing data and any of required that are absent from the
// top-level object.
func DecodeStrict(data []byte, v any, required ...string) Issues {
	var issues Issues

	if len(required) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			issues.add("", "expected a JSON object: %v", err)
			return issues
		}
		for _, name := range required {
			if _, ok := fields[name]; !ok {
				issues.add(name, "required")
			}
		}
		if !issues.OK() {
			return issues
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		issues.add(decodePath(err), "%v", err)
		return issues
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		issues.add("", "unexpected trailing data")
	}
	return issues
}

func decodePath(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	return ""
}
