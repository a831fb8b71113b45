// Package filter classifies normalized postings as relevant or not using
// configurable pattern tiers. Tier contents are data, not code: different
// rule sets can be loaded and tested independently.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule is one named group of case-insensitive regex patterns.
type Rule struct {
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
}

// RulesetConfig is the YAML shape of a rule set.
//
// Evaluation order is fixed (downgrade, then exclude, then label rules) but
// the content of each tier is deployment configuration.
type RulesetConfig struct {
	Downgrade []Rule `yaml:"downgrade"`
	Exclude   []Rule `yaml:"exclude"`
	Labels    []Rule `yaml:"labels"`
}

type compiledRule struct {
	label string
	re    *regexp.Regexp
}

// Ruleset is a compiled, ready-to-classify rule set.
type Ruleset struct {
	downgrade []compiledRule
	exclude   []compiledRule
	labels    []compiledRule
}

// Compile validates and compiles every pattern. Patterns are matched
// case-insensitively against accent-stripped text, so "développeur" rules
// also hit "developpeur" and vice versa.
func Compile(cfg RulesetConfig) (*Ruleset, error) {
	rs := &Ruleset{}
	var err error
	if rs.downgrade, err = compileRules(cfg.Downgrade, "downgrade"); err != nil {
		return nil, err
	}
	if rs.exclude, err = compileRules(cfg.Exclude, "exclude"); err != nil {
		return nil, err
	}
	if rs.labels, err = compileRules(cfg.Labels, "labels"); err != nil {
		return nil, err
	}
	return rs, nil
}

func compileRules(rules []Rule, tier string) ([]compiledRule, error) {
	var out []compiledRule
	for _, r := range rules {
		for _, p := range r.Patterns {
			// Patterns go through the same accent stripping as the matched
			// text; regex metacharacters are ASCII, so the transform only
			// touches the literal parts. Case folding stays with (?i) so
			// classes like \B keep their meaning.
			re, err := regexp.Compile("(?i)" + stripMarks(p))
			if err != nil {
				return nil, fmt.Errorf("%s rule %q: bad pattern %q: %w", tier, r.Label, p, err)
			}
			out = append(out, compiledRule{label: r.Label, re: re})
		}
	}
	return out, nil
}

// stripMarks removes diacritics, leaving case intact.
func stripMarks(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return result
}

// normalizeText strips diacritics and lowercases, so French accented titles
// match plain-ASCII patterns.
func normalizeText(str string) string {
	return strings.ToLower(stripMarks(str))
}
