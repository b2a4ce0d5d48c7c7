package retrieval

import (
	"fmt"
	"strings"
)

// FailureKind 检索失败类别
type FailureKind int

const (
	FailureConnection FailureKind = iota + 1
	FailureNoResults
	FailureNoMatches
	FailureEmbedding
	FailureQuery
)

func (k FailureKind) String() string {
	switch k {
	case FailureConnection:
		return "connection"
	case FailureNoResults:
		return "no_results"
	case FailureNoMatches:
		return "no_matches"
	case FailureEmbedding:
		return "embedding"
	case FailureQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Failure 检索失败，Detail 仅对 FailureQuery 有意义
type Failure struct {
	Kind   FailureKind
	Detail string
	Err    error
}

// Sentinel 返回日志与提示词中使用的固定文本
func (f *Failure) Sentinel() string {
	switch f.Kind {
	case FailureConnection:
		return "Connection error"
	case FailureNoResults:
		return "No results"
	case FailureNoMatches:
		return "No matches"
	case FailureEmbedding:
		return "Embedding error"
	default:
		return f.Detail
	}
}

func (f *Failure) Error() string {
	if f.Err != nil && f.Kind != FailureQuery {
		return fmt.Sprintf("%s: %v", f.Sentinel(), f.Err)
	}
	return f.Sentinel()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// RowSet 结构化查询结果，Failure 非空时 Rows 无意义
type RowSet struct {
	Columns []string
	Rows    [][]any
	Failure *Failure
}

// OK 查询成功且至少一行
func (r RowSet) OK() bool {
	return r.Failure == nil
}

// Passage 一条语义检索命中
type Passage struct {
	Name        string
	Domain      string
	Date        string
	Time        string
	Venue       string
	Description string
	Similarity  float64
}

// Text 渲染为提示词中的片段
func (p Passage) Text() string {
	return fmt.Sprintf("Name: %s\nDomain: %s\nDate: %s\nTime: %s\nVenue: %s\nDetails: %s",
		p.Name, p.Domain, p.Date, p.Time, p.Venue, p.Description)
}

// Passages 语义检索结果，按相似度降序
type Passages struct {
	Items   []Passage
	Failure *Failure
}

// OK 检索成功且至少一条命中
func (p Passages) OK() bool {
	return p.Failure == nil
}

// Texts 各片段文本
func (p Passages) Texts() []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.Text())
	}
	return out
}

// Context 失败时返回固定文本，否则以空行连接各片段
func (p Passages) Context() string {
	if p.Failure != nil {
		return p.Failure.Sentinel()
	}
	return strings.Join(p.Texts(), "\n\n")
}
