package retrieval

import "errors"

var (
	// ErrVectorDisabled 表示向量索引后端未配置
	ErrVectorDisabled = errors.New("vector retrieval is disabled")
)
