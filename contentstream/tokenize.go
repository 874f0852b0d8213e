package contentstream

import "strings"

// tokenize splits a content stream into operands/operators (naive whitespace split).
func tokenize(src string) []string {
	return strings.Fields(src)
}
