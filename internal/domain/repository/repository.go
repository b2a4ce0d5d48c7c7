// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"
)

// ErrUnavailable 存储未配置或连接失败
var ErrUnavailable = errors.New("store unavailable")

// TxKey 事务上下文键类型
type TxKey struct{}

// Transactor 事务管理接口
type Transactor interface {
	// WithTransaction 在事务中执行操作，fn 返回错误时回滚
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Rows 原始查询结果，列顺序与 SELECT 一致
type Rows struct {
	Columns []string
	Values  [][]any
}

// Len 返回行数
func (r *Rows) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}
