package validator

import "strings"

// FormatReport renders a Result as a multi-line report readable by both
// humans and the model: a pass/fail line, one bullet per error, then a
// Warnings section that is omitted when empty.
func FormatReport(res Result) string {
	var b strings.Builder

	if res.Valid {
		b.WriteString("✅ Validation passed")
	} else {
		b.WriteString("❌ Validation failed")
	}

	for _, e := range res.Errors {
		b.WriteString("\n- ")
		b.WriteString(e)
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n\nWarnings:")
		for _, w := range res.Warnings {
			b.WriteString("\n- ")
			b.WriteString(w)
		}
	}

	return b.String()
}
