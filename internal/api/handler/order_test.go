package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/order"
)

// MockOrderService はOrderServiceInterfaceのモック
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID string, amount int) (*order.Order, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func TestOrderHandler_Place(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に注文を作成できる", func(t *testing.T) {
		mockService := new(MockOrderService)
		now := time.Now()
		expected := &order.Order{
			ID:        "order-123",
			UserID:    "user-123",
			Amount:    10000,
			Status:    order.StatusComplete,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockService.On("PlaceOrder", mock.Anything, "user-123", 10000).Return(expected, nil)

		handler := NewOrderHandler(mockService)

		reqBody := `{"user_id": "user-123", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Place(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp OrderResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "order-123", resp.ID)
		assert.Equal(t, "complete", resp.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("残高不足の場合402で支払い待ちの注文を返す", func(t *testing.T) {
		mockService := new(MockOrderService)
		now := time.Now()
		waiting := &order.Order{
			ID:        "order-123",
			UserID:    "user-" + order.NotEnoughMoneyMarker,
			Amount:    10000,
			Status:    order.StatusWait,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockService.On("PlaceOrder", mock.Anything, waiting.UserID, 10000).
			Return(waiting, order.ErrNotEnoughMoney)

		handler := NewOrderHandler(mockService)

		reqBody := `{"user_id": "user-` + order.NotEnoughMoneyMarker + `", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Place(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)

		var resp OrderErrorResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "wait", resp.Order.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("システム障害のエラーはそのまま伝播する", func(t *testing.T) {
		mockService := new(MockOrderService)
		mockService.On("PlaceOrder", mock.Anything, mock.Anything, 10000).
			Return(nil, assert.AnError)

		handler := NewOrderHandler(mockService)

		reqBody := `{"user_id": "user-x", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Place(c)

		require.Error(t, err)
		mockService.AssertExpectations(t)
	})

	t.Run("金額が0以下の場合400", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService)

		reqBody := `{"user_id": "user-123", "amount": 0}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Place(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestOrderHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に注文を取得できる", func(t *testing.T) {
		mockService := new(MockOrderService)
		now := time.Now()
		expected := &order.Order{
			ID: "order-123", UserID: "user-123", Amount: 5000,
			Status: order.StatusComplete, CreatedAt: now, UpdatedAt: now,
		}
		mockService.On("GetByID", mock.Anything, "order-123").Return(expected, nil)

		handler := NewOrderHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/orders/order-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("order-123")

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("注文が見つからない場合はエラーが伝播する", func(t *testing.T) {
		mockService := new(MockOrderService)
		mockService.On("GetByID", mock.Anything, "nonexistent").Return(nil, order.ErrOrderNotFound)

		handler := NewOrderHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/orders/nonexistent", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nonexistent")

		err := handler.GetByID(c)

		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
		mockService.AssertExpectations(t)
	})
}
