package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/domain/repository"
)

// UserRepository 管理员账号仓储实现
type UserRepository struct {
	client *Client
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository 创建用户仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if r.client == nil {
		return repository.ErrUnavailable
	}
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(user).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	return nil
}

// GetByUsername 根据用户名获取用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if r.client == nil {
		return nil, repository.ErrUnavailable
	}
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByUsername")
	defer span.End()

	var user entity.User
	if err := getDB(ctx, r.client.db).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", classify(err))
	}
	return &user, nil
}
