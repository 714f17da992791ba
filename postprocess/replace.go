package postprocess

import (
	"sort"
	"strings"
)

// Replacer applies literal find/replace rules in a fixed order: longer keys
// first, then lexically, so a short key never shadows a longer one that
// contains it.
type Replacer struct {
	keys  []string
	rules map[string]string
}

// NewReplacer builds a Replacer from a from->to mapping. Empty keys are
// ignored.
func NewReplacer(rules map[string]string) *Replacer {
	r := &Replacer{rules: make(map[string]string, len(rules))}
	for from, to := range rules {
		if from == "" {
			continue
		}
		r.rules[from] = to
		r.keys = append(r.keys, from)
	}
	sort.Slice(r.keys, func(i, j int) bool {
		if len(r.keys[i]) != len(r.keys[j]) {
			return len(r.keys[i]) > len(r.keys[j])
		}
		return r.keys[i] < r.keys[j]
	})
	return r
}

// Len returns the number of rules.
func (r *Replacer) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Apply runs every rule over text in order.
func (r *Replacer) Apply(text string) string {
	if r == nil {
		return text
	}
	for _, from := range r.keys {
		text = strings.ReplaceAll(text, from, r.rules[from])
	}
	return text
}
