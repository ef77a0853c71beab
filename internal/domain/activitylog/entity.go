package activitylog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FailureMarker を含むメッセージの保存は失敗する
// 伝播シナリオの検証用フック（ログ保存の失敗を意図的に再現する）
const FailureMarker = "ログ例外"

// ActivityLog は監査ログエンティティを表す
type ActivityLog struct {
	ID        string
	Message   string
	CreatedAt time.Time
}

// NewJoinLog は会員登録の監査ログを作成する
func NewJoinLog(username string) *ActivityLog {
	return &ActivityLog{
		ID:        uuid.New().String(),
		Message:   "join: " + username,
		CreatedAt: time.Now(),
	}
}

// ShouldFail は保存が失敗するべきメッセージかを返す
func (l *ActivityLog) ShouldFail() bool {
	return strings.Contains(l.Message, FailureMarker)
}
