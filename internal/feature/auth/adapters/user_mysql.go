// Package adapters はauthフィーチャーの永続化アダプターを提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"psx_backend/internal/feature/auth/domain/entity"
	"psx_backend/internal/feature/auth/usecase"
)

// mysqlDuplicateEntry はMySQLの一意制約違反のエラー番号です。
const mysqlDuplicateEntry = 1062

// userMySQL はUserRepositoryのGORM実装です。
type userMySQL struct {
	db *gorm.DB
}

// NewUserRepository は指定されたDB接続でUserRepositoryを生成します。
func NewUserRepository(db *gorm.DB) usecase.UserRepository {
	return &userMySQL{db: db}
}

var _ usecase.UserRepository = (*userMySQL)(nil)

// Create は新しいユーザーを保存します。メール重複はErrEmailAlreadyExistsへ変換します。
func (r *userMySQL) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return usecase.ErrEmailAlreadyExists
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (r *userMySQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
