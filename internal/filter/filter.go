// Package filter narrows CI job names down with the search factors users type:
// quoted factors are full-name globs, unquoted ones match hyphen-delimited fields.
package filter

import (
	"strings"

	"github.com/gobwas/glob"
)

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Query is the parsed form of a list of search factors.
type Query struct {
	Exact []string // full-name globs, applied in order
	And   []string // every one must match some field
	Or    []string // at least one must match some field, if any
}

// Parse splits factors into exact, AND and OR patterns. All patterns are lower-cased.
func Parse(factors []string) Query {
	var q Query
	var raw []string
	for _, factor := range factors {
		if len(factor) >= 2 && strings.HasPrefix(factor, `"`) && strings.HasSuffix(factor, `"`) {
			q.Exact = append(q.Exact, strings.ToLower(factor[1:len(factor)-1]))
			continue
		}
		raw = append(raw, strings.Split(strings.ToLower(factor), "-")...)
	}

	for _, factor := range raw {
		if strings.Contains(factor, ",") {
			q.Or = append(q.Or, strings.Split(factor, ",")...)
		} else {
			q.And = append(q.And, factor)
		}
	}
	return q
}

// Filter returns the job names matching factors, in input order.
func (e *Engine) Filter(jobNames []string, factors []string) []string {
	return e.FilterQuery(jobNames, Parse(factors))
}

func (e *Engine) FilterQuery(jobNames []string, q Query) []string {
	candidates := jobNames
	for _, pattern := range q.Exact {
		g := compile(pattern)
		var narrowed []string
		for _, name := range candidates {
			if g.Match(strings.ToLower(name)) {
				narrowed = append(narrowed, name)
			}
		}
		candidates = narrowed
	}

	matcher := buildMatcher(q)
	var matched []string
	for _, name := range candidates {
		if matcher(fields(name)) {
			matched = append(matched, name)
		}
	}
	return matched
}

func buildMatcher(q Query) func([]string) bool {
	and := compileAll(q.And)
	or := compileAll(q.Or)
	return func(fields []string) bool {
		for _, g := range and {
			if !anyField(g, fields) {
				return false
			}
		}
		if len(or) == 0 {
			return true
		}
		for _, g := range or {
			if anyField(g, fields) {
				return true
			}
		}
		return false
	}
}

func anyField(g glob.Glob, fields []string) bool {
	for _, f := range fields {
		if g.Match(f) {
			return true
		}
	}
	return false
}

func fields(jobName string) []string {
	return strings.Split(strings.ToLower(jobName), "-")
}

func compileAll(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, len(patterns))
	for i, p := range patterns {
		globs[i] = compile(p)
	}
	return globs
}

// maxClassSize bounds how many characters a bracket expression may expand to.
const maxClassSize = 1024

type never struct{}

func (never) Match(string) bool { return false }

// compile builds a separator-less glob with shell wildcard semantics: only
// "*", "?" and bracket expressions are special, everything else is literal.
func compile(pattern string) glob.Glob {
	translated, ok := translate(pattern)
	if !ok {
		return never{}
	}
	g, err := glob.Compile(translated)
	if err != nil {
		return glob.MustCompile(glob.QuoteMeta(pattern))
	}
	return g
}

// translate rewrites a shell pattern into glob syntax. Brackets without a
// closing "]" are literal. ok is false when the pattern can never match.
func translate(pattern string) (string, bool) {
	p := []rune(pattern)
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '*', '?':
			b.WriteRune(c)
		case '[':
			end := classEnd(p, i+1)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class, ok := translateClass(p[i+1 : end])
			if !ok {
				return "", false
			}
			b.WriteString(class)
			i = end
		default:
			b.WriteString(glob.QuoteMeta(string(c)))
		}
	}
	return b.String(), true
}

// classEnd returns the index of the "]" closing a bracket expression that
// starts at i, or -1. A leading "]" (after an optional "!") is a member.
func classEnd(p []rune, i int) int {
	j := i
	if j < len(p) && p[j] == '!' {
		j++
	}
	if j < len(p) && p[j] == ']' {
		j++
	}
	for ; j < len(p); j++ {
		if p[j] == ']' {
			return j
		}
	}
	return -1
}

// translateClass expands ranges into an explicit escaped character list.
// Reversed ranges are empty.
func translateClass(body []rune) (string, bool) {
	negate := len(body) > 0 && body[0] == '!'
	if negate {
		body = body[1:]
	}

	var members []rune
	hasDash := false
	add := func(r rune) {
		if r == '-' {
			hasDash = true
			return
		}
		members = append(members, r)
	}
	for i := 0; i < len(body); i++ {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if int(hi)-int(lo) >= maxClassSize {
				return "", false
			}
			for r := lo; r <= hi; r++ {
				add(r)
			}
			i += 2
			continue
		}
		add(body[i])
	}

	switch {
	case len(members) == 0 && !hasDash && negate:
		return "?", true
	case len(members) == 0 && !hasDash:
		return "", false
	case len(members) == 0:
		// A lone "-" cannot be escaped without being read as a range.
		if negate {
			return "[!-]", true
		}
		return `\-`, true
	}

	var b strings.Builder
	b.WriteByte('[')
	if negate {
		b.WriteByte('!')
	}
	for _, r := range members {
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	if hasDash {
		b.WriteString(`\-`)
	}
	b.WriteByte(']')
	return b.String(), true
}
