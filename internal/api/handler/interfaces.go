package handler

import (
	"context"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/member"
	"github.com/sanosuguru/go-tx-propagation/internal/domain/order"
)

// MemberServiceInterface は会員サービスのインターフェース
type MemberServiceInterface interface {
	Join(ctx context.Context, username string) (*member.Member, error)
	JoinWithRecovery(ctx context.Context, username string) (*member.Member, error)
	JoinWithIsolatedLog(ctx context.Context, username string) (*member.Member, error)
	GetByUsername(ctx context.Context, username string) (*member.Member, error)
}

// OrderServiceInterface は注文サービスのインターフェース
type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, userID string, amount int) (*order.Order, error)
	GetByID(ctx context.Context, id string) (*order.Order, error)
}
