package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"psx_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数です。
	minPasswordLength = 8

	// refreshTokenTTL はリフレッシュトークンの有効期間です。
	refreshTokenTTL = 30 * 24 * time.Hour
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type UserRepository interface {
	// Create は新しいユーザーを保存します。メールアドレスが重複する場合、
	// ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスでユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// JWTGenerator はアクセストークンの生成を抽象化します。
type JWTGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
}

// TokenPair はログイン・リフレッシュの結果です。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthUsecase は認証のビジネスロジックを実装します。
type AuthUsecase struct {
	users    UserRepository
	sessions SessionRepository
	jwt      JWTGenerator
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, jwt JWTGenerator) *AuthUsecase {
	return &AuthUsecase{users: users, sessions: sessions, jwt: jwt}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *AuthUsecase) Signup(ctx context.Context, email, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return u.users.Create(ctx, &entity.User{Email: email, Password: string(hashed)})
}

// Login はユーザーを認証し、アクセス・リフレッシュトークンの組を返します。
// タイミング攻撃を避けるため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, email)

	// 未検出時に比較をスキップしないためのダミーハッシュ
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user.ID, user.Email)
}

// Refresh は有効なリフレッシュトークンを新しいトークンの組へ交換します。
// 使用済みトークンは無効化されます（ワンタイム）。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := u.sessions.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if session.IsExpired() {
		_ = u.sessions.Delete(ctx, refreshToken)
		return nil, ErrInvalidRefreshToken
	}

	if err := u.sessions.Delete(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return u.issueTokens(ctx, session.UserID, session.Email)
}

// Logout はリフレッシュトークンを無効化します。
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	err := u.sessions.Delete(ctx, refreshToken)
	if err != nil && !errors.Is(err, ErrInvalidRefreshToken) {
		return err
	}
	return nil
}

func (u *AuthUsecase) issueTokens(ctx context.Context, userID uint, email string) (*TokenPair, error) {
	access, err := u.jwt.GenerateToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &entity.Session{
		Token:     refresh,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// newRefreshToken は64文字のランダムな16進トークンを生成します。
func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
