package member

import (
	"time"

	"github.com/google/uuid"
)

// Member は会員エンティティを表す
type Member struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// NewMember は新しい会員を作成する
func NewMember(username string) *Member {
	return &Member{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// Validate は会員の検証を行う
func (m *Member) Validate() error {
	if m.Username == "" {
		return ErrUsernameRequired
	}
	return nil
}
