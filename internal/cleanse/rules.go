package cleanse

import (
	"fmt"

	"github.com/shineum/mms-parser/internal/email"
)

// Rule is a pattern substitution as written in configuration files.
type Rule struct {
	Pattern string `yaml:"pattern" toml:"pattern"`
	Replace string `yaml:"replace" toml:"replace"`
}

// Compile turns per-field rule lists keyed by field name (for example
// "body_text") into a transform map. Rules for one field run in order.
func Compile(rules map[string][]Rule) (map[email.Field]Transform, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	out := make(map[email.Field]Transform, len(rules))
	for name, list := range rules {
		field, err := email.ParseField(name)
		if err != nil {
			return nil, err
		}
		fns := make([]Transform, 0, len(list))
		for i, rule := range list {
			fn, err := Substitute(rule.Pattern, rule.Replace)
			if err != nil {
				return nil, fmt.Errorf("cleanse rule %d for %s: %w", i, name, err)
			}
			fns = append(fns, fn)
		}
		out[field] = Chain(fns...)
	}
	return out, nil
}
