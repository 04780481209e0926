// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrEmailAlreadyExists は同じメールアドレスのユーザーが既に存在することを示します。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUserNotFound は条件に一致するユーザーが存在しないことを示します。
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials はメールアドレスまたはパスワードが不正であることを示します。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRefreshToken はリフレッシュトークンが無効・期限切れであることを示します。
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
