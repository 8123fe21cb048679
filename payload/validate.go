package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type object = map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// objectOf parses raw as a JSON object. ok is false for any other shape.
func objectOf(raw json.RawMessage) (object, bool) {
	if isNull(raw) {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// requireString accepts any JSON string, including "", and rejects a missing
// key, null or any other type.
func requireString(obj object, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrMissingField, key)
	}
	return s, nil
}

// optionalString returns "" for a missing, null or non-string value.
func optionalString(obj object, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// coerceBool reads true/false, "true"/"false", 1/0 and "1"/"0". Anything
// else is false.
func coerceBool(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1":
			return true
		}
		return false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 1
	}
	return false
}
