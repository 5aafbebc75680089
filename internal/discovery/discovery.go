// Package discovery selects the columns of a dataset that qualify as
// candidate model inputs.
package discovery

import "strings"

// Rules describe how candidate features are recognized. A column
// qualifies when it is not excluded and either ends with the lag
// suffix or starts with one of the prefixes. Exclusion wins over both
// match rules.
type Rules struct {
	Exclude   []string
	LagSuffix string
	Prefixes  []string
}

// Candidates returns the columns matching the rules, in input order.
// Each column appears at most once even when it matches several rules
// or is listed several times.
func Candidates(columns []string, rules Rules) []string {
	excluded := make(map[string]struct{}, len(rules.Exclude))
	for _, name := range rules.Exclude {
		excluded[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(columns))
	var out []string
	for _, col := range columns {
		if _, ok := excluded[col]; ok {
			continue
		}
		if _, ok := seen[col]; ok {
			continue
		}
		if !matches(col, rules) {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	return out
}

func matches(col string, rules Rules) bool {
	if rules.LagSuffix != "" && strings.HasSuffix(col, rules.LagSuffix) {
		return true
	}
	for _, prefix := range rules.Prefixes {
		if strings.HasPrefix(col, prefix) {
			return true
		}
	}
	return false
}
