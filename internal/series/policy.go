package series

import (
	"fmt"
	"strings"
)

// Policy selects how a closed run is folded into the result records.
type Policy string

const (
	// PolicyMaxMerge keeps one record per display mode: the longest run seen
	// and every zoom observed across all of its runs.
	PolicyMaxMerge Policy = "max-merge"
	// PolicyAppend keeps one record per run, in input order.
	PolicyAppend Policy = "append"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyMaxMerge

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return DefaultPolicy, nil
	case string(PolicyMaxMerge), "max", "merge":
		return PolicyMaxMerge, nil
	case string(PolicyAppend), "per-run":
		return PolicyAppend, nil
	default:
		return "", fmt.Errorf("unsupported series policy %q (want %q or %q)", value, PolicyMaxMerge, PolicyAppend)
	}
}

func (p Policy) String() string {
	return string(p)
}
