package query

import (
	"context"
	"strconv"

	"club-knowledge-api/internal/application/retrieval"
)

// 路由名称，同时作为指标标签
const (
	RouteListAll  = "list_all"
	RouteMode     = "mode"
	RouteYear     = "year"
	RouteDomain   = "domain"
	RouteSemantic = "semantic"
)

const (
	listAllSQL = `SELECT name_of_event, date_of_event FROM events ORDER BY date_of_event ASC`
	modeSQL    = `SELECT name_of_event, date_of_event FROM events WHERE LOWER(mode_of_event) = $1 ORDER BY date_of_event ASC`
	yearSQL    = `SELECT name_of_event, date_of_event FROM events WHERE EXTRACT(YEAR FROM date_of_event) = $1 ORDER BY date_of_event ASC`
	domainSQL  = `SELECT name_of_event, event_domain, date_of_event FROM events WHERE event_domain ILIKE $1 ORDER BY date_of_event ASC`
)

// Rule 谓词与处理函数，按顺序求值，第一个命中的规则生效
type Rule struct {
	Name   string
	Match  func(q Question) bool
	Handle func(ctx context.Context, r *Router, q Question) string
}

// DefaultRules 规则顺序即优先级
func DefaultRules() []Rule {
	return []Rule{
		{Name: RouteListAll, Match: matchListAll, Handle: handleListAll},
		{Name: RouteMode, Match: matchMode, Handle: handleMode},
		{Name: RouteYear, Match: matchYear, Handle: handleYear},
		{Name: RouteDomain, Match: matchDomain, Handle: handleDomain},
		{Name: RouteSemantic, Match: func(Question) bool { return true }, Handle: handleSemantic},
	}
}

// matchListAll 只靠 show/give/all 触发时，独立出现的领域关键词让位给领域规则
func matchListAll(q Question) bool {
	if !q.HasEvent || !q.HasList || q.Mode != "" || q.Year != "" {
		return false
	}
	return q.ExplicitList || !q.DomainWord
}

func matchMode(q Question) bool {
	return q.HasEvent && q.Mode != ""
}

func matchYear(q Question) bool {
	return q.HasEvent && q.Year != ""
}

func matchDomain(q Question) bool {
	return q.HasEvent && q.Domain != nil
}

func handleListAll(ctx context.Context, r *Router, _ Question) string {
	rs := r.retriever.Structured(ctx, retrieval.Statement{SQL: listAllSQL})
	return FormatRows("events", rs, nameDateFields)
}

func handleMode(ctx context.Context, r *Router, q Question) string {
	rs := r.retriever.Structured(ctx, retrieval.Statement{SQL: modeSQL, Args: []any{q.Mode}})
	return FormatRows(q.Mode+" events", rs, nameDateFields)
}

func handleYear(ctx context.Context, r *Router, q Question) string {
	year, _ := strconv.Atoi(q.Year)
	rs := r.retriever.Structured(ctx, retrieval.Statement{SQL: yearSQL, Args: []any{year}})
	return FormatRows("events in "+q.Year, rs, nameDateFields)
}

func handleDomain(ctx context.Context, r *Router, q Question) string {
	rs := r.retriever.Structured(ctx, retrieval.Statement{
		SQL:  domainSQL,
		Args: []any{"%" + q.Domain.Label + "%"},
	})
	return FormatRows(q.Domain.Label+" events", rs, nameDomainDateFields)
}

func handleSemantic(ctx context.Context, r *Router, q Question) string {
	return r.answerSemantic(ctx, q.Raw)
}
