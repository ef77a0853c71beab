package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/member"
)

// MemberHandler は会員登録ハンドラー
type MemberHandler struct {
	service MemberServiceInterface
}

// NewMemberHandler はMemberHandlerを作成する
func NewMemberHandler(s MemberServiceInterface) *MemberHandler {
	return &MemberHandler{service: s}
}

// 監査ログの束ね方を選ぶ登録モード
const (
	// JoinModeSingle は会員とログを1つのトランザクションで保存する
	JoinModeSingle = "single"
	// JoinModeRecover はログの失敗を握り潰す（参加フレームのため全体がロールバックされる）
	JoinModeRecover = "recover"
	// JoinModeIsolated はログを独立したトランザクションで保存する
	JoinModeIsolated = "isolated"
)

type JoinRequest struct {
	Username string `json:"username" validate:"required" example:"suzuki_taro"`
	Mode     string `json:"mode" validate:"omitempty,oneof=single recover isolated" example:"single"`
}

type MemberResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username  string    `json:"username" example:"suzuki_taro"`
	CreatedAt time.Time `json:"created_at"`
}

func toMemberResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Username:  m.Username,
		CreatedAt: m.CreatedAt,
	}
}

// Join godoc
// @Summary 会員を登録
// @Description 会員と監査ログを保存します。modeで保存の束ね方を選択できます
// @Tags members
// @Accept json
// @Produce json
// @Param request body JoinRequest true "登録情報"
// @Success 201 {object} MemberResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "ユーザー名が既に登録済み"
// @Failure 500 {object} api.ErrorResponse "トランザクションがロールバックされた"
// @Router /members [post]
func (h *MemberHandler) Join(c echo.Context) error {
	var req JoinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var (
		m   *member.Member
		err error
	)
	switch req.Mode {
	case JoinModeRecover:
		m, err = h.service.JoinWithRecovery(ctx, req.Username)
	case JoinModeIsolated:
		m, err = h.service.JoinWithIsolatedLog(ctx, req.Username)
	default:
		m, err = h.service.Join(ctx, req.Username)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMemberResponse(m))
}

// GetByUsername godoc
// @Summary 会員を取得
// @Description ユーザー名から会員を取得します
// @Tags members
// @Produce json
// @Param username path string true "ユーザー名"
// @Success 200 {object} MemberResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /members/{username} [get]
func (h *MemberHandler) GetByUsername(c echo.Context) error {
	username := c.Param("username")
	m, err := h.service.GetByUsername(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMemberResponse(m))
}
