package usecase

import (
	"context"

	"psx_backend/internal/feature/auth/domain/entity"
)

// SessionRepository はリフレッシュトークンセッションの保存を抽象化します。
// 期限管理はストレージのTTLに委ねます。
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByToken(ctx context.Context, token string) (*entity.Session, error)
	Delete(ctx context.Context, token string) error
}
