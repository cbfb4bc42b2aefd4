// Package validator statically checks Strudel pattern code without executing
// it. Patterns are JavaScript, so syntax is checked with a full-fidelity
// JavaScript parser; everything past the parse is a small fixed rule set of
// structural checks and heuristics.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja/parser"
)

// Result reports the outcome of one validation pass. Valid is true iff
// Errors is empty; warnings are advisory and never affect validity.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var (
	tempoRe    = regexp.MustCompile(`\bsetcps\s*\(`)
	playableRe = regexp.MustCompile(`\b(?:stack|arrange|sound|note|cat|seq|s|n)\s*\(`)
	// Bare identifier as the whole final line, e.g. a pattern bound earlier.
	bareIdentRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*;?$`)

	undefinedRe   = regexp.MustCompile(`\bundefined\b`)
	emptyAssignRe = regexp.MustCompile(`(?m)=\s*$`)
	// s(bd) instead of s("bd"); pattern arguments are mini-notation strings.
	unquotedPatternRe = regexp.MustCompile(`\b(?:sound|note|s|n)\(\s*([A-Za-z_$][\w$]*)\s*[,)]`)
	methodCallRe      = regexp.MustCompile(`\.[A-Za-z_$][\w$]*\s*\(`)
	identRe           = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
)

// Methods that language models regularly invent but that do not exist in the
// Strudel runtime. Each occurrence is a hard error: the pattern would throw
// at evaluation time.
var hallucinatedMethods = []string{
	"glide",
	"portamento",
	"slideTo",
	"bpm",
	"volume",
	"playNote",
}

const maxChainLength = 12

// Validate checks a complete Strudel pattern. It is a pure function: no side
// effects, deterministic, safe to call concurrently.
func Validate(code string) Result {
	res := Result{
		Errors:   []string{},
		Warnings: []string{},
	}

	// A parse failure short-circuits everything else: the structural checks
	// below assume syntactically valid input and would produce misleading
	// diagnostics on top of broken syntax.
	if _, err := parser.ParseFile(nil, "pattern.js", code, 0); err != nil {
		msg := err.Error()
		if list, ok := err.(parser.ErrorList); ok && len(list) > 0 {
			first := list[0]
			msg = fmt.Sprintf("%s (line %d, column %d)", first.Message, first.Position.Line, first.Position.Column)
		}
		res.Errors = append(res.Errors, "Syntax error: "+msg)
		res.Valid = false
		return res
	}

	checkRequiredConstructs(code, &res)
	checkHallucinatedMethods(code, &res)
	checkHygiene(code, &res)

	res.Valid = len(res.Errors) == 0
	return res
}

func checkRequiredConstructs(code string, res *Result) {
	if !tempoRe.MatchString(code) {
		res.Errors = append(res.Errors, "Missing tempo: add a setcps(...) call, e.g. setcps(120/4/60)")
	}

	if !hasPlayableExpression(code) {
		res.Warnings = append(res.Warnings, "No playable expression detected; the pattern may produce no sound. End with a call like stack(...), s(...) or note(...)")
	}
}

// hasPlayableExpression looks for a construct that produces audible output.
// The fallback on the final line is approximate and can both false-positive
// and false-negative, which is why a miss is only a warning.
func hasPlayableExpression(code string) bool {
	if playableRe.MatchString(code) {
		return true
	}

	lines := strings.Split(code, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		return strings.HasSuffix(line, ")") || strings.HasSuffix(line, ");") || bareIdentRe.MatchString(line)
	}
	return false
}

func checkHallucinatedMethods(code string, res *Result) {
	for _, name := range hallucinatedMethods {
		re := regexp.MustCompile(`\.\s*` + regexp.QuoteMeta(name) + `\s*\(`)
		if re.MatchString(code) {
			res.Errors = append(res.Errors, fmt.Sprintf(".%s() does not exist in Strudel; remove it or use a supported method", name))
		}
	}
}

func checkHygiene(code string, res *Result) {
	if undefinedRe.MatchString(code) {
		res.Warnings = append(res.Warnings, `Contains the literal "undefined"; a variable or method result is probably missing`)
	}

	if emptyAssignRe.MatchString(code) {
		res.Warnings = append(res.Warnings, "Assignment with an empty right-hand side")
	}

	if m := unquotedPatternRe.FindStringSubmatch(code); m != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Pattern argument %q is unquoted; sample names are usually mini-notation strings like s(\"bd*4\")", m[1]))
	}

	if n := longestMethodChain(code); n > maxChainLength {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Method chain with %d calls; consider splitting the pattern into named parts", n))
	}

	checkArrangeRepetition(code, res)
}

// longestMethodChain counts method calls per statement, where a statement
// spans continuation lines that start with a dot.
func longestMethodChain(code string) int {
	longest, current := 0, 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		count := len(methodCallRe.FindAllString(trimmed, -1))
		if strings.HasPrefix(trimmed, ".") {
			current += count
		} else {
			current = count
		}
		longest = max(longest, current)
	}
	return longest
}

// checkArrangeRepetition flags the naive arrangement anti-pattern where one
// named pattern is dropped into nearly every section of an arrange(...) call,
// producing a piece with no real progression.
func checkArrangeRepetition(code string, res *Result) {
	idx := strings.Index(code, "arrange(")
	if idx < 0 {
		return
	}

	body := balancedParens(code[idx+len("arrange"):])
	sections := topLevelBrackets(body)
	if len(sections) < 3 {
		return
	}

	counts := map[string]int{}
	for _, section := range sections {
		seen := map[string]bool{}
		for _, ident := range identRe.FindAllString(section, -1) {
			seen[ident] = true
		}
		for ident := range seen {
			counts[ident]++
		}
	}

	threshold := (len(sections)*3 + 3) / 4 // ceil(3/4)
	for ident, n := range counts {
		if n >= threshold {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%q appears in %d of %d arrange sections; vary the arrangement for more progression", ident, n, len(sections)))
			return
		}
	}
}

// balancedParens returns the content of the leading parenthesized group of s,
// or "" when s does not start with '(' or the group never closes.
func balancedParens(s string) string {
	if !strings.HasPrefix(s, "(") {
		return ""
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i]
			}
		}
	}
	return ""
}

// topLevelBrackets returns the contents of each top-level [...] group in s.
func topLevelBrackets(s string) []string {
	var groups []string
	depth, start := 0, -1
	for i, r := range s {
		switch r {
		case '[':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ']':
			depth--
			if depth == 0 && start >= 0 {
				groups = append(groups, s[start:i])
				start = -1
			}
		}
	}
	return groups
}
