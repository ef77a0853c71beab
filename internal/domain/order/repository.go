package order

import "context"

// Repository は注文リポジトリのインターフェース
type Repository interface {
	// Save は注文を保存する
	Save(ctx context.Context, o *Order) error

	// Update は注文を更新する
	Update(ctx context.Context, o *Order) error

	// FindByID はIDから注文を取得する
	FindByID(ctx context.Context, id string) (*Order, error)
}
