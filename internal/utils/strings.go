// Package utils holds small helpers shared by the HTTP layer and the CLI.
package utils

import "strings"

// SplitList splits a comma-separated string and returns trimmed non-empty
// values. Returns nil for empty or whitespace-only input.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// UpperSet returns the upper-cased values of SplitList(s) as a set
func UpperSet(s string) map[string]struct{} {
	values := SplitList(s)
	if len(values) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = struct{}{}
	}
	return set
}
