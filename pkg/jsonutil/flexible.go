// Package jsonutil handles loosely-typed JSON values in oracle completions,
// which routinely quote numbers or return bare values where strings are
// expected.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleString converts a raw JSON value to a string, accepting strings,
// numbers and booleans. Returns empty string for null/empty input.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleInt converts a raw JSON value to an int, accepting numbers,
// fractional numbers (truncated) and numeric strings. The boolean result
// reports whether a usable number was found.
func FlexibleInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return int(numVal), true
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	}

	return 0, false
}

// FlexibleStringSlice converts a raw JSON value to a string slice, accepting
// a JSON array of flexible values or a single comma-separated string.
func FlexibleStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err == nil {
		items := make([]string, 0, len(rawItems))
		for _, item := range rawItems {
			if s := strings.TrimSpace(FlexibleString(item)); s != "" {
				items = append(items, s)
			}
		}
		return items
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err != nil {
		return nil
	}
	var items []string
	for _, part := range strings.Split(strVal, ",") {
		if s := strings.TrimSpace(part); s != "" {
			items = append(items, s)
		}
	}
	return items
}
