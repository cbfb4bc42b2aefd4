package runtime

import (
	"regexp"
	"strings"

	"github.com/YNCK000/strudel-studio/pkg/validator"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:javascript|js)?[ \t]*\n(.*?)```")

// extractPattern returns the code of the first fenced block in content, or
// "" when there is none.
func extractPattern(content string) string {
	m := fencedBlockRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// verifyPattern re-derives the validation verdict for a final answer. The
// model's own claim that it validated is not trusted; the terminal event
// carries this result instead.
func verifyPattern(content string) bool {
	code := extractPattern(content)
	if code == "" {
		return false
	}
	return validator.Validate(code).Valid
}
