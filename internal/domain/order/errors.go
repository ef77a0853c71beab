package order

import "errors"

// Order ドメインのエラー定義
var (
	ErrOrderNotFound  = errors.New("注文が見つかりません")
	ErrUserIDRequired = errors.New("ユーザーIDは必須です")
	ErrInvalidAmount  = errors.New("金額は正の値である必要があります")

	// ErrNotEnoughMoney は残高不足を表す業務エラー
	// システム障害ではないため、注文は支払い待ちのままコミットされる
	ErrNotEnoughMoney = errors.New("残高が不足しています")
)
