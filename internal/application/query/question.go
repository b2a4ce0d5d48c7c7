package query

import (
	"regexp"
	"strings"
	"unicode"

	"club-knowledge-api/internal/domain/entity"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// Keyword 关键词与展示标签
type Keyword struct {
	Token string
	Label string
}

// Modes 按检查顺序排列
var Modes = []string{entity.ModeOnline, entity.ModeOffline, entity.ModeHybrid}

// DomainKeywords 按表顺序取第一个命中
var DomainKeywords = []Keyword{
	{Token: "ai", Label: "AI"},
	{Token: "ml", Label: "ML"},
	{Token: "data", Label: "DATA"},
	{Token: "web", Label: "WEB"},
	{Token: "cloud", Label: "CLOUD"},
	{Token: "iot", Label: "IOT"},
	{Token: "blockchain", Label: "BLOCKCHAIN"},
	{Token: "cyber", Label: "CYBER"},
	{Token: "robotics", Label: "ROBOTICS"},
}

var listWords = []string{"list", "show", "give", "all"}

// Question 路由规则使用的问题特征
type Question struct {
	Raw   string
	Lower string
	// Words 按非字母数字切分后的小写词
	Words map[string]struct{}

	HasEvent bool
	HasList  bool
	// ExplicitList 问题中出现 "list"
	ExplicitList bool
	// Mode 第一个出现的活动形式
	Mode string
	// Year 第一个匹配的四位年份
	Year string
	// Domain 第一个以子串形式命中的领域关键词
	Domain *Keyword
	// DomainWord 是否有领域关键词作为独立单词出现
	DomainWord bool
}

// Analyze 提取问题特征，所有关键词匹配均为小写子串匹配
func Analyze(raw string) Question {
	lower := strings.ToLower(raw)
	q := Question{
		Raw:      raw,
		Lower:    lower,
		Words:    splitWords(lower),
		HasEvent: strings.Contains(lower, "event"),
		Year:     yearPattern.FindString(lower),
	}
	q.ExplicitList = strings.Contains(lower, "list")
	for _, w := range listWords {
		if strings.Contains(lower, w) {
			q.HasList = true
			break
		}
	}
	for _, m := range Modes {
		if strings.Contains(lower, m) {
			q.Mode = m
			break
		}
	}
	for i := range DomainKeywords {
		kw := &DomainKeywords[i]
		if q.Domain == nil && strings.Contains(lower, kw.Token) {
			q.Domain = kw
		}
		if _, ok := q.Words[kw.Token]; ok {
			q.DomainWord = true
		}
	}
	return q
}

func splitWords(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
