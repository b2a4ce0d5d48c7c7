package retrieval

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var stopWords = map[string]struct{}{
	"event": {}, "workshop": {}, "happen": {}, "when": {}, "what": {}, "where": {},
	"who": {}, "tell": {}, "me": {}, "about": {}, "the": {}, "a": {}, "an": {},
	"of": {}, "in": {}, "on": {}, "is": {}, "was": {}, "did": {}, "for": {},
}

// Clean 小写化、去标点并去除停用词；全部被过滤时退回去标点后的文本
func Clean(text string) string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)

	kept := make([]string, 0, len(fields))
	for _, w := range fields {
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return strings.Join(fields, " ")
	}
	return strings.Join(kept, " ")
}
