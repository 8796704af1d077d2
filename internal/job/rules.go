package job

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Rule is a single compiled output-artifact pattern.
type Rule struct {
	// Pattern is the original glob, without the '!' prefix.
	Pattern string

	// Exclude reports whether matching paths are dropped rather
	// than collected.
	Exclude bool

	g glob.Glob
}

// Rules is an ordered set of output rules.
type Rules []Rule

// CompileRules parses and compiles output-rule patterns.
// '/' is the only separator; '*' does not cross path components,
// '**' does.
func CompileRules(patterns []string) (Rules, error) {
	rules := make(Rules, 0, len(patterns))

	for _, p := range patterns {
		exclude := false

		pat := p
		if strings.HasPrefix(pat, "!") {
			exclude = true
			pat = pat[1:]
		}

		if pat == "" {
			return nil, fmt.Errorf("%w: %q", ErrRuleEmpty, p)
		}

		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", p, err)
		}

		rules = append(rules, Rule{Pattern: pat, Exclude: exclude, g: g})
	}

	return rules, nil
}

// Match reports whether path should be collected: it must match at
// least one keep rule and no exclude rule.
func (rs Rules) Match(path string) bool {
	keep := false

	for _, r := range rs {
		if !r.g.Match(path) {
			continue
		}

		if r.Exclude {
			return false
		}

		keep = true
	}

	return keep
}
