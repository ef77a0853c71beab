package order

import (
	"time"

	"github.com/google/uuid"
)

// 伝播シナリオの検証用マーカー
// ユーザーIDに含まれていると該当の失敗経路を再現する
const (
	// SystemFailureMarker はシステム障害（ロールバックされるべき失敗）を発生させる
	SystemFailureMarker = "システム例外"
	// NotEnoughMoneyMarker は残高不足（コミットされるべき業務エラー）を発生させる
	NotEnoughMoneyMarker = "残高不足"
)

// Status は注文の支払い状態を表す
type Status string

const (
	// StatusWait は支払い待ち（残高不足など業務上の保留）
	StatusWait Status = "wait"
	// StatusComplete は支払い完了
	StatusComplete Status = "complete"
)

// Order は注文エンティティを表す
type Order struct {
	ID        string
	UserID    string
	Amount    int
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder は新しい注文を支払い待ちで作成する
func NewOrder(userID string, amount int) *Order {
	now := time.Now()
	return &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Amount:    amount,
		Status:    StatusWait,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkComplete は支払いを完了にする
func (o *Order) MarkComplete() {
	o.Status = StatusComplete
	o.UpdatedAt = time.Now()
}

// Validate は注文の検証を行う
func (o *Order) Validate() error {
	if o.UserID == "" {
		return ErrUserIDRequired
	}
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
