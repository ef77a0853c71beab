package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/order"
)

// OrderHandler は注文ハンドラー
type OrderHandler struct {
	service OrderServiceInterface
}

// NewOrderHandler はOrderHandlerを作成する
func NewOrderHandler(s OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

type PlaceOrderRequest struct {
	UserID string `json:"user_id" validate:"required" example:"user-123"`
	Amount int    `json:"amount" validate:"required,gt=0" example:"10000"`
}

type OrderResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID    string    `json:"user_id" example:"user-123"`
	Amount    int       `json:"amount" example:"10000"`
	Status    string    `json:"status" example:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Amount:    o.Amount,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// Place godoc
// @Summary 注文を作成
// @Description 注文を作成します。残高不足の場合は支払い待ちのまま注文が残ります
// @Tags orders
// @Accept json
// @Produce json
// @Param request body PlaceOrderRequest true "注文情報"
// @Success 201 {object} OrderResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 402 {object} api.ErrorResponse "残高不足（注文は支払い待ちで保存済み）"
// @Router /orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	o, err := h.service.PlaceOrder(c.Request().Context(), req.UserID, req.Amount)
	if err != nil {
		// 残高不足は注文が保存されたうえでの業務エラー。注文を含めて返す
		if errors.Is(err, order.ErrNotEnoughMoney) && o != nil {
			return c.JSON(http.StatusPaymentRequired, OrderErrorResponse{
				Error: err.Error(),
				Order: toOrderResponse(o),
			})
		}
		return err
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

// OrderErrorResponse は注文を伴う業務エラーのレスポンス
type OrderErrorResponse struct {
	Error string        `json:"error"`
	Order OrderResponse `json:"order"`
}

// GetByID godoc
// @Summary 注文を取得
// @Description 指定IDの注文を取得します
// @Tags orders
// @Produce json
// @Param id path string true "注文ID"
// @Success 200 {object} OrderResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	o, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}
