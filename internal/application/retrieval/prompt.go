package retrieval

import "strings"

// BuildPromptContext 截断到 maxRunes，maxRunes <= 0 表示不截断
func BuildPromptContext(text string, maxRunes int) string {
	txt := strings.TrimSpace(text)
	if maxRunes <= 0 {
		return txt
	}
	return truncateRunes(txt, maxRunes)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
