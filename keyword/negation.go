package keyword

import (
	"regexp"
	"strings"
)

var negationClause = regexp.MustCompile(`(I |We |They |He |She |It )?(don't|doesn't|won't|can't|shouldn't|not|never).*?(,|\.|but)`)

// StripNegations deletes each negated clause, from an optional subject
// pronoun through the next comma, period or "but". Whitespace runs in the
// result are collapsed and the ends trimmed.
func StripNegations(text string) string {
	stripped := negationClause.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(stripped), " ")
}
