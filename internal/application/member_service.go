package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/activitylog"
	"github.com/sanosuguru/go-tx-propagation/internal/domain/member"
	redisinfra "github.com/sanosuguru/go-tx-propagation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-tx-propagation/internal/pkg/logger"
	"github.com/sanosuguru/go-tx-propagation/internal/pkg/metrics"
	"github.com/sanosuguru/go-tx-propagation/internal/txn"
)

// MemberService は会員登録のユースケースを提供する
// 会員の保存と監査ログの保存を、伝播モードの異なる3つのやり方で束ねる
type MemberService struct {
	coordinator *txn.Coordinator
	memberRepo  member.Repository
	logRepo     activitylog.Repository
	signupLock  *redisinfra.RegistrationLock
	lockTTL     time.Duration
	metrics     *metrics.Metrics
}

// NewMemberService は新しい MemberService を作成する
// signupLock と m は nil でもよい
func NewMemberService(c *txn.Coordinator, mr member.Repository, lr activitylog.Repository, lock *redisinfra.RegistrationLock, lockTTL time.Duration, m *metrics.Metrics) *MemberService {
	return &MemberService{
		coordinator: c,
		memberRepo:  mr,
		logRepo:     lr,
		signupLock:  lock,
		lockTTL:     lockTTL,
		metrics:     m,
	}
}

// Join は会員と監査ログを1つのトランザクションで保存する
// どちらかが失敗すれば両方ロールバックされる
func (s *MemberService) Join(ctx context.Context, username string) (*member.Member, error) {
	m := member.NewMember(username)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	release, err := s.acquireLock(ctx, username)
	if err != nil {
		return nil, err
	}
	defer release()

	err = txn.WithinTx(ctx, s.coordinator, txn.Required, func(ctx context.Context) error {
		if err := s.memberRepo.Save(ctx, m); err != nil {
			return err
		}
		return s.logRepo.Save(ctx, activitylog.NewJoinLog(username))
	})
	if err != nil {
		s.countJoin("rolled_back")
		return nil, err
	}
	s.countJoin("success")
	return m, nil
}

// JoinWithRecovery は監査ログの失敗を握り潰して会員登録を続行しようとする
// ログ保存のフレームは外側のトランザクションに参加しているため、その論理
// ロールバックがロールバック専用マークを残し、最外殻のコミットは必ず
// txn.ErrUnexpectedRollback になる。「回復したつもりが全体が消えていた」を
// 呼び出し元へ明示的に知らせる経路
func (s *MemberService) JoinWithRecovery(ctx context.Context, username string) (*member.Member, error) {
	m := member.NewMember(username)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	release, err := s.acquireLock(ctx, username)
	if err != nil {
		return nil, err
	}
	defer release()

	err = txn.WithinTx(ctx, s.coordinator, txn.Required, func(ctx context.Context) error {
		if err := s.memberRepo.Save(ctx, m); err != nil {
			return err
		}

		logErr := txn.WithinTx(ctx, s.coordinator, txn.Required, func(ctx context.Context) error {
			return s.logRepo.Save(ctx, activitylog.NewJoinLog(username))
		})
		if logErr != nil {
			logger.Info("監査ログ保存に失敗しましたが処理を継続します",
				zap.String("username", username), zap.Error(logErr))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, txn.ErrUnexpectedRollback) {
			s.countJoin("unexpected_rollback")
		} else {
			s.countJoin("rolled_back")
		}
		return nil, err
	}
	s.countJoin("success")
	return m, nil
}

// JoinWithIsolatedLog は監査ログを REQUIRES_NEW の独立したトランザクションで保存する
// ログ保存が失敗しても会員登録はコミットされる
func (s *MemberService) JoinWithIsolatedLog(ctx context.Context, username string) (*member.Member, error) {
	m := member.NewMember(username)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	release, err := s.acquireLock(ctx, username)
	if err != nil {
		return nil, err
	}
	defer release()

	err = txn.WithinTx(ctx, s.coordinator, txn.Required, func(ctx context.Context) error {
		if err := s.memberRepo.Save(ctx, m); err != nil {
			return err
		}

		logErr := txn.WithinTx(ctx, s.coordinator, txn.RequiresNew, func(ctx context.Context) error {
			return s.logRepo.Save(ctx, activitylog.NewJoinLog(username))
		})
		if logErr != nil {
			// 独立したトランザクションのため、外側のコミットには影響しない
			logger.Warn("監査ログ保存に失敗しました（会員登録は継続）",
				zap.String("username", username), zap.Error(logErr))
		}
		return nil
	})
	if err != nil {
		s.countJoin("rolled_back")
		return nil, err
	}
	s.countJoin("success")
	return m, nil
}

// GetByUsername はユーザー名から会員を取得する
func (s *MemberService) GetByUsername(ctx context.Context, username string) (*member.Member, error) {
	return s.memberRepo.FindByUsername(ctx, username)
}

// acquireLock は同一ユーザー名の同時登録を防ぐロックを取得する
// ロックが構成されていない場合は何もしない解放関数を返す
func (s *MemberService) acquireLock(ctx context.Context, username string) (func(), error) {
	if s.signupLock == nil {
		return func() {}, nil
	}
	token, err := s.signupLock.Acquire(ctx, username, s.lockTTL)
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, fmt.Errorf("同じユーザー名の登録が処理中です: %w", err)
		}
		return nil, err
	}
	return func() {
		if err := token.Release(ctx); err != nil {
			logger.Warn("登録ロックの解放に失敗", zap.Error(err))
		}
	}, nil
}

func (s *MemberService) countJoin(result string) {
	if s.metrics != nil {
		s.metrics.MemberJoinsTotal.WithLabelValues(result).Inc()
	}
}
