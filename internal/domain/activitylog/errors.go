package activitylog

import "errors"

// ActivityLog ドメインのエラー定義
var (
	ErrLogNotFound      = errors.New("監査ログが見つかりません")
	ErrLogStorageFailed = errors.New("監査ログの保存に失敗しました")
)
