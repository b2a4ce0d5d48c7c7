package query

import (
	"fmt"
	"strings"
	"time"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/domain/entity"
)

// Field 列序号与展示标签
type Field struct {
	Index int
	Label string
}

var (
	nameDateFields       = []Field{{0, "Name"}, {1, "Date"}}
	nameDomainDateFields = []Field{{0, "Name"}, {1, "Domain"}, {2, "Date"}}
)

// FormatRows 失败或空结果一律返回 "No <label> found."
func FormatRows(label string, rs retrieval.RowSet, fields []Field) string {
	if !rs.OK() || len(rs.Rows) == 0 {
		return fmt.Sprintf("No %s found.", label)
	}

	blocks := make([]string, 0, len(rs.Rows))
	for i, row := range rs.Rows {
		var b strings.Builder
		for j, f := range fields {
			if j == 0 {
				fmt.Fprintf(&b, "%d. ", i+1)
			} else {
				b.WriteString("\n   ")
			}
			fmt.Fprintf(&b, "%s: %s", f.Label, cell(row, f.Index))
		}
		blocks = append(blocks, b.String())
	}
	return strings.ToUpper(label) + ":\n" + strings.Join(blocks, "\n\n")
}

// RenderRows 结构化结果的字面渲染，供生成式回答使用
func RenderRows(rs retrieval.RowSet) string {
	if !rs.OK() {
		return rs.Failure.Sentinel()
	}
	tuples := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		cells := make([]string, 0, len(row))
		for i := range row {
			cells = append(cells, cell(row, i))
		}
		tuples = append(tuples, "("+strings.Join(cells, ", ")+")")
	}
	return "[" + strings.Join(tuples, ", ") + "]"
}

func cell(row []any, i int) string {
	if i >= len(row) {
		return entity.NotAvailable
	}
	switch v := row[i].(type) {
	case nil:
		return entity.NotAvailable
	case time.Time:
		return v.Format(entity.DateLayout)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
