package query

import (
	"regexp"
	"strings"
)

var writeKeyword = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|grant|revoke|into|copy|call|do|vacuum|lock|set)\b`)

var (
	stringLiteral  = regexp.MustCompile(`'(?:[^']|'')*'`)
	quotedIdent    = regexp.MustCompile(`"`)
	systemFunc     = regexp.MustCompile(`(?i)\b(pg_\w*|current_setting|set_config|lo_\w+|dblink\w*|query_to_xml\w*)\b`)
	extractFrom    = regexp.MustCompile(`(?i)\b(extract|substring|trim|overlay)\s*\(([^()]*?)\bfrom\b`)
	relationClause = regexp.MustCompile(`(?i)\b(from|join)\s+([^\s(),;]+|\()`)
	trailingList   = regexp.MustCompile(`(?i)^\s*(?:as\s+)?(?:[a-z_]\w*\s*)?,\s*([^\s(),;]+)`)
)

// allowedRelations 模型生成的语句只能读取 events 表
var allowedRelations = map[string]struct{}{
	"events":        {},
	"public.events": {},
}

// IsReadOnlySelect 仅接受单条只读 SELECT，且只能引用 events 表、不能调用系统函数
func IsReadOnlySelect(sql string) bool {
	s := strings.TrimSpace(sql)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" || strings.Contains(s, ";") {
		return false
	}
	if strings.Contains(s, "--") || strings.Contains(s, "/*") {
		return false
	}
	fields := strings.Fields(s)
	if !strings.EqualFold(fields[0], "select") {
		return false
	}

	s = stripLiterals(s)
	if quotedIdent.MatchString(s) || writeKeyword.MatchString(s) || systemFunc.MatchString(s) {
		return false
	}
	return onlyEventsRelations(s)
}

// stripLiterals 去掉字符串常量，避免 ILIKE '%update%' 之类被误判
func stripLiterals(s string) string {
	return stringLiteral.ReplaceAllString(s, "''")
}

// onlyEventsRelations 检查 FROM / JOIN 之后的每个关系名，含逗号连接的列表
func onlyEventsRelations(s string) bool {
	// EXTRACT(YEAR FROM col) 中的 FROM 不是关系子句
	s = extractFrom.ReplaceAllString(s, "$1($2,")

	found := false
	for _, m := range relationClause.FindAllStringSubmatchIndex(s, -1) {
		found = true
		name := s[m[4]:m[5]]
		if name == "(" {
			continue
		}
		if !allowedRelation(name) {
			return false
		}
		rest := s[m[1]:]
		for {
			next := trailingList.FindStringSubmatchIndex(rest)
			if next == nil {
				break
			}
			if !allowedRelation(rest[next[2]:next[3]]) {
				return false
			}
			rest = rest[next[1]:]
		}
	}
	return found
}

func allowedRelation(name string) bool {
	_, ok := allowedRelations[strings.ToLower(name)]
	return ok
}
