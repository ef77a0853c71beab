package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("登録ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("登録ロックの所有者ではありません")
)

// RegistrationLock は同一ユーザー名の同時登録を直列化する Redis ロック
// 伝播コーディネーターはフロー内の逐次実行しか守らないため、
// フローをまたぐ競合はここで防ぐ
type RegistrationLock struct {
	client *redis.Client
}

// NewRegistrationLock は新しい RegistrationLock を作成する
func NewRegistrationLock(client *redis.Client) *RegistrationLock {
	return &RegistrationLock{client: client}
}

// LockToken は取得済みロックの解放用トークン
type LockToken struct {
	client *redis.Client
	key    string
	value  string
}

// Acquire はユーザー名に対するロックを取得する
func (l *RegistrationLock) Acquire(ctx context.Context, username string, ttl time.Duration) (*LockToken, error) {
	key := "signup:lock:" + username
	value := uuid.New().String()

	// SetNX でキーが存在しない場合のみ取得
	ok, err := l.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &LockToken{client: l.client, key: key, value: value}, nil
}

// Release はロックを解放する
// Lua スクリプトで所有者確認と削除をアトミックに実行する
func (t *LockToken) Release(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	result, err := t.client.Eval(ctx, script, []string{t.key}, t.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}
