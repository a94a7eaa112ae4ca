package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQueryList handles both repeated and comma-separated query params.
// Example:
//
//	?language_ids=1,2   → ["1","2"]
//	?language_ids=1&language_ids=2  → ["1","2"]
//
// Empty items are dropped.
func ParseQueryList(q map[string][]string, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseIntList is ParseQueryList for integer ids.
func ParseIntList(q map[string][]string, key string) ([]int64, error) {
	parts := ParseQueryList(q, key)
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// IsTrue reports whether the query value of key is exactly "true".
func IsTrue(q map[string][]string, key string) bool {
	v := q[key]
	return len(v) > 0 && v[0] == "true"
}
