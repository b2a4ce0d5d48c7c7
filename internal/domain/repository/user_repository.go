package repository

import (
	"context"

	"club-knowledge-api/internal/domain/entity"
)

// UserRepository 管理员账号仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error

	// GetByUsername 未找到时返回 nil, nil
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
