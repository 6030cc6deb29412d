package usecase

import (
	"errors"
	"sort"
	"strings"
)

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return nonNegative(*v)
}

func derefFloat(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
