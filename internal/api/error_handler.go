package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/member"
	"github.com/sanosuguru/go-tx-propagation/internal/domain/order"
	"github.com/sanosuguru/go-tx-propagation/internal/pkg/logger"
	"github.com/sanosuguru/go-tx-propagation/internal/txn"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// トランザクション伝播のエラーをHTTPステータスへ対応付ける
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status  = http.StatusInternalServerError
		message = "内部サーバーエラー"
		code    = ""
	)

	switch {
	case errors.Is(err, txn.ErrUnexpectedRollback):
		// コミットしたつもりがロールバックされた。クライアントへ
		// 通常の失敗と区別できるコードで必ず通知する
		status = http.StatusInternalServerError
		message = "処理はロールバックされました"
		code = "UNEXPECTED_ROLLBACK"
	case errors.Is(err, txn.ErrPropagationMismatch):
		status = http.StatusConflict
		message = err.Error()
		code = "PROPAGATION_MISMATCH"
	case errors.Is(err, txn.ErrCapabilityUnsupported):
		status = http.StatusNotImplemented
		message = err.Error()
		code = "CAPABILITY_UNSUPPORTED"
	case errors.Is(err, txn.ErrOrderingViolation), errors.Is(err, txn.ErrFlowBroken):
		status = http.StatusInternalServerError
		message = "トランザクションの整合性エラー"
		code = "ORDERING_VIOLATION"
	case errors.Is(err, member.ErrMemberNotFound), errors.Is(err, order.ErrOrderNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, member.ErrMemberAlreadyExists):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, order.ErrNotEnoughMoney):
		status = http.StatusPaymentRequired
		message = err.Error()
		code = "NOT_ENOUGH_MONEY"
	default:
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if status >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", status),
			zap.String("code", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(status, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
