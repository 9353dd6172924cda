package balances

import "strings"

// Normalizer rewrites an account identifier into one canonical candidate
// form. Matching applies the same strategy to both sides before comparing.
type Normalizer struct {
	Name  string
	Apply func(string) string
}

// Strategies is the ordered matching policy: strategies are tried in
// sequence and the first one under which both identifiers agree decides the
// match. Order runs from strictest to loosest so an exact match is never
// shadowed by a looser rewrite.
var Strategies = []Normalizer{
	{Name: "exact", Apply: func(s string) string { return s }},
	{Name: "trimmed", Apply: strings.TrimSpace},
	{Name: "casefold", Apply: func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }},
	{Name: "no-leading-zeros", Apply: func(s string) string {
		s = strings.ToUpper(strings.TrimSpace(s))
		trimmed := strings.TrimLeft(s, "0")
		if trimmed == "" && s != "" {
			return "0"
		}
		return trimmed
	}},
	{Name: "digits-only", Apply: func(s string) string {
		var b strings.Builder
		for _, r := range s {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return strings.TrimLeft(b.String(), "0")
	}},
}

// Match reports whether two identifiers refer to the same account, and the
// name of the strategy that decided it.
func Match(a, b string) (string, bool) {
	for _, strategy := range Strategies {
		na, nb := strategy.Apply(a), strategy.Apply(b)
		if na == "" || nb == "" {
			continue
		}
		if na == nb {
			return strategy.Name, true
		}
	}
	return "", false
}
