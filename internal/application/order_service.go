package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/order"
	"github.com/sanosuguru/go-tx-propagation/internal/txn"
)

// OrderService は注文のユースケースを提供する
type OrderService struct {
	coordinator *txn.Coordinator
	orderRepo   order.Repository
}

// NewOrderService は新しい OrderService を作成する
func NewOrderService(c *txn.Coordinator, or order.Repository) *OrderService {
	return &OrderService{coordinator: c, orderRepo: or}
}

// PlaceOrder は注文を作成する
// システム障害はトランザクションごとロールバックする。残高不足は業務エラーで
// あり、注文を支払い待ちのまま残してコミットしたうえで ErrNotEnoughMoney を返す
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, amount int) (*order.Order, error) {
	o := order.NewOrder(userID, amount)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	var bizErr error
	err := txn.WithinTx(ctx, s.coordinator, txn.Required, func(ctx context.Context) error {
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}

		switch {
		case strings.Contains(userID, order.SystemFailureMarker):
			return fmt.Errorf("注文処理中にシステム障害が発生しました: %s", userID)
		case strings.Contains(userID, order.NotEnoughMoneyMarker):
			// 支払い待ちのままコミットし、業務エラーはトランザクションの外で返す
			bizErr = order.ErrNotEnoughMoney
			return nil
		}

		o.MarkComplete()
		return s.orderRepo.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if bizErr != nil {
		return o, bizErr
	}
	return o, nil
}

// GetByID はIDから注文を取得する
func (s *OrderService) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}
