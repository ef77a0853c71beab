package member

import "errors"

// Member ドメインのエラー定義
var (
	ErrMemberNotFound      = errors.New("会員が見つかりません")
	ErrUsernameRequired    = errors.New("ユーザー名は必須です")
	ErrMemberAlreadyExists = errors.New("同じユーザー名の会員が既に存在します")
)
