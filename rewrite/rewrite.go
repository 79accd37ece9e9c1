// Package rewrite applies ordered textual rewrite rules to source text.
package rewrite

import (
	"regexp"
	"strings"
)

// Rule is a single textual transformation. Apply returns the rewritten
// text and the number of replacements made. Rules do not fail: zero
// matches returns the input unchanged.
type Rule interface {
	Name() string
	Apply(src string) (string, int)
}

// LiteralRule replaces every occurrence of Old with New.
type LiteralRule struct {
	RuleName string
	Old      string
	New      string
}

func (r LiteralRule) Name() string { return r.RuleName }

func (r LiteralRule) Apply(src string) (string, int) {
	n := strings.Count(src, r.Old)
	if n == 0 {
		return src, 0
	}
	return strings.ReplaceAll(src, r.Old, r.New), n
}

// RegexRule replaces every match of Pattern with the expansion of
// Replace. Replace may reference capture groups as ${1}.
type RegexRule struct {
	RuleName string
	Pattern  *regexp.Regexp
	Replace  string
}

func (r RegexRule) Name() string { return r.RuleName }

func (r RegexRule) Apply(src string) (string, int) {
	n := len(r.Pattern.FindAllStringIndex(src, -1))
	if n == 0 {
		return src, 0
	}
	return r.Pattern.ReplaceAllString(src, r.Replace), n
}

// RuleCount records how many replacements one rule made.
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Result is the outcome of running a pipeline over a source text.
type Result struct {
	// Text is the rewritten source.
	Text string
	// Changed reports whether Text differs from the input.
	Changed bool
	// Total is the number of replacements across all rules.
	Total int
	// Counts holds per-rule replacement counts in application order.
	Counts []RuleCount
}

// Pipeline is an ordered, non-branching list of rules. Each rule sees
// the output of the previous one.
type Pipeline struct {
	rules []Rule
}

// NewPipeline creates a pipeline that applies rules in the given order.
func NewPipeline(rules ...Rule) *Pipeline {
	return &Pipeline{rules: rules}
}

// Run applies every rule in order and reports per-rule counts. A rule
// that matches nothing leaves the text untouched; that is not an error.
func (p *Pipeline) Run(src string) Result {
	res := Result{Counts: make([]RuleCount, 0, len(p.rules))}
	text := src
	for _, rule := range p.rules {
		var n int
		text, n = rule.Apply(text)
		res.Counts = append(res.Counts, RuleCount{Rule: rule.Name(), Count: n})
		res.Total += n
	}
	res.Text = text
	res.Changed = text != src
	return res
}
