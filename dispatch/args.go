package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Args holds decoded invocation arguments. Numbers are kept as
// json.Number so decimal amounts survive with their exact digits.
type Args map[string]any

func decodeArgs(raw json.RawMessage) (Args, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Args{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	out := Args{}
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("dispatch: decode arguments: %w", err)
	}
	return out, nil
}

// String returns the argument rendered as a trimmed string. Numbers keep
// their original JSON digits. Missing or null arguments yield "".
func (a Args) String(key string) string {
	switch value := a[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

// Has reports whether the argument is present and non-null.
func (a Args) Has(key string) bool {
	value, ok := a[key]
	return ok && value != nil
}

// Int returns the argument as an int when it carries an integral value.
func (a Args) Int(key string) (int, bool) {
	switch value := a[key].(type) {
	case json.Number:
		parsed, err := strconv.Atoi(value.String())
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Bool returns the argument as a bool.
func (a Args) Bool(key string) (bool, bool) {
	switch value := a[key].(type) {
	case bool:
		return value, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}
