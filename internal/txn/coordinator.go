package txn

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-tx-propagation/internal/pkg/logger"
	"github.com/sanosuguru/go-tx-propagation/internal/pkg/metrics"
)

// Coordinator はトランザクションの伝播と物理リソースの整合を司るオーケストレーター
// 呼び出し階層のどの深さからでも Begin を要求でき、物理リソース（1コネクション・
// 1コミット・1ロールバック）は常に単一の ACID 単位として振る舞う
type Coordinator struct {
	provider Provider
	metrics  *metrics.Metrics
	hook     func(Event)
}

// NewCoordinator は新しい Coordinator を作成する
// m は nil でもよい（メトリクスを記録しない）
func NewCoordinator(provider Provider, m *metrics.Metrics) *Coordinator {
	return &Coordinator{provider: provider, metrics: m}
}

// OnEvent は観測イベントのフックを登録する
func (c *Coordinator) OnEvent(hook func(Event)) {
	c.hook = hook
}

// Begin は伝播モードに従って論理トランザクションを開始し、Frame を返す
// Frame は対応する Commit または Rollback でちょうど1回だけ完了させること
func (c *Coordinator) Begin(ctx context.Context, mode PropagationMode) (*Frame, error) {
	fl, ok := FlowFrom(ctx)
	if !ok {
		return nil, ErrNoFlow
	}
	if fl.broken {
		return nil, ErrFlowBroken
	}

	action, err := Resolve(mode, fl.HasTransaction())
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.TransactionsBegunTotal.WithLabelValues(mode.String(), action.String()).Inc()
	}

	switch action {
	case ActionStartNew:
		return c.startNew(ctx, fl, mode, nil)

	case ActionJoin:
		f := newFrame(mode)
		f.handle = fl.handle
		fl.push(f)
		c.emit(EventFrameJoined, f)
		logger.Debug("既存トランザクションに参加",
			zap.String("frame_id", f.id), zap.String("mode", mode.String()))
		return f, nil

	case ActionSuspendAndStartNew:
		susp := fl.suspend()
		c.emitSuspended(mode)
		return c.startNew(ctx, fl, mode, susp)

	case ActionSuspendAndRunWithout:
		susp := fl.suspend()
		c.emitSuspended(mode)
		f := newFrame(mode)
		f.suspended = susp
		fl.push(f)
		return f, nil

	case ActionCreateSavepoint:
		sph, ok := fl.handle.(SavepointHandle)
		if !ok {
			return nil, ErrCapabilityUnsupported
		}
		name := fmt.Sprintf("sp_%d", fl.nextSavepointSeq())
		ref, err := sph.CreateSavepoint(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("セーブポイント作成に失敗: %w", err)
		}
		f := newFrame(mode)
		f.handle = fl.handle
		f.savepoint = ref
		fl.push(f)
		c.emit(EventSavepointCreated, f)
		c.countSavepoint("create")
		logger.Debug("セーブポイントを作成",
			zap.String("frame_id", f.id), zap.String("savepoint", name))
		return f, nil

	case ActionRunWithout:
		f := newFrame(mode)
		fl.push(f)
		return f, nil

	default:
		return nil, fmt.Errorf("未対応のアクション: %s", action)
	}
}

// Commit は論理コミットを要求する
// 物理コミットが発生するのは新規物理フレームの完了時のみ。内部の参加者が
// ロールバック専用マークを付けていた場合は物理ロールバックを実行したうえで
// ErrUnexpectedRollback を必ず返す（呼び出し元の期待と実際の結果の乖離を
// 決して黙殺しない）
func (c *Coordinator) Commit(ctx context.Context, f *Frame) error {
	fl, ok := FlowFrom(ctx)
	if !ok {
		return ErrNoFlow
	}
	if fl.broken {
		return ErrFlowBroken
	}
	if err := c.complete(fl, f); err != nil {
		return err
	}

	switch {
	case f.isSentinel():
		if f.suspended != nil {
			fl.resume(f.suspended)
		}
		return nil

	case f.HasSavepoint():
		sph := f.handle.(SavepointHandle)
		if err := sph.Release(ctx, f.savepoint); err != nil {
			return fmt.Errorf("セーブポイント解放に失敗: %w", err)
		}
		c.emit(EventSavepointReleased, f)
		c.countSavepoint("release")
		c.observeDuration(f, "commit")
		return nil

	case !f.newPhysical:
		// 論理コミットのみ。物理トランザクションは最外殻のフレームが終える
		logger.Debug("論理コミット（物理操作なし）", zap.String("frame_id", f.id))
		c.observeDuration(f, "commit")
		return nil
	}

	rollbackOnly := fl.rollbackOnly
	fl.unbind()

	if rollbackOnly {
		rbErr := f.handle.Rollback()
		if f.suspended != nil {
			fl.resume(f.suspended)
		}
		c.emit(EventPhysicalRollback, f)
		c.emit(EventUnexpectedRollback, f)
		c.countRollback("rollback_only")
		if c.metrics != nil {
			c.metrics.UnexpectedRollbacksTotal.Inc()
		}
		c.observeDuration(f, "unexpected_rollback")
		logger.Warn("ロールバック専用マークのためコミット要求をロールバックに転換",
			zap.String("frame_id", f.id))
		if rbErr != nil {
			return fmt.Errorf("ロールバック専用マークによるロールバックに失敗 (%v): %w", rbErr, ErrUnexpectedRollback)
		}
		return ErrUnexpectedRollback
	}

	commitErr := f.handle.Commit()
	if f.suspended != nil {
		fl.resume(f.suspended)
	}
	if commitErr != nil {
		return fmt.Errorf("物理コミットに失敗: %w", commitErr)
	}
	c.emit(EventPhysicalCommit, f)
	if c.metrics != nil {
		c.metrics.PhysicalCommitsTotal.Inc()
	}
	c.observeDuration(f, "commit")
	logger.Debug("物理コミット完了", zap.String("frame_id", f.id))
	return nil
}

// Rollback は論理ロールバックを要求する
// 参加フレームは物理リソースに触れず、ロールバック専用マークを付けるだけ
// （内部の失敗が、外側のトランザクションの成果を所有者の同意なく破棄してはならない）
func (c *Coordinator) Rollback(ctx context.Context, f *Frame) error {
	fl, ok := FlowFrom(ctx)
	if !ok {
		return ErrNoFlow
	}
	if fl.broken {
		return ErrFlowBroken
	}
	if err := c.complete(fl, f); err != nil {
		return err
	}

	switch {
	case f.isSentinel():
		if f.suspended != nil {
			fl.resume(f.suspended)
		}
		return nil

	case f.HasSavepoint():
		sph := f.handle.(SavepointHandle)
		if err := sph.RollbackTo(ctx, f.savepoint); err != nil {
			return fmt.Errorf("セーブポイントへのロールバックに失敗: %w", err)
		}
		if err := sph.Release(ctx, f.savepoint); err != nil {
			return fmt.Errorf("セーブポイント解放に失敗: %w", err)
		}
		// セーブポイントで巻き戻し済みのため、外側のトランザクションは
		// 引き続き自由にコミットできる。ロールバック専用マークは付けない
		c.emit(EventSavepointRolledBack, f)
		c.countSavepoint("rollback_to")
		c.observeDuration(f, "rollback")
		return nil

	case !f.newPhysical:
		fl.markRollbackOnly()
		c.emit(EventFrameMarkedRollbackOnly, f)
		c.observeDuration(f, "rollback")
		logger.Debug("ロールバック専用マークを設定", zap.String("frame_id", f.id))
		return nil
	}

	fl.unbind()
	rbErr := f.handle.Rollback()
	if f.suspended != nil {
		fl.resume(f.suspended)
	}
	if rbErr != nil {
		return fmt.Errorf("物理ロールバックに失敗: %w", rbErr)
	}
	c.emit(EventPhysicalRollback, f)
	c.countRollback("requested")
	c.observeDuration(f, "rollback")
	logger.Debug("物理ロールバック完了", zap.String("frame_id", f.id))
	return nil
}

// startNew は物理トランザクションを新規に開いて束縛する
// 開始に失敗した場合、中断済みの束縛があれば復元する
func (c *Coordinator) startNew(ctx context.Context, fl *Flow, mode PropagationMode, susp *suspendedBinding) (*Frame, error) {
	h, err := c.provider.Open(ctx)
	if err != nil {
		if susp != nil {
			fl.resume(susp)
		}
		return nil, fmt.Errorf("物理トランザクションの開始に失敗: %w", err)
	}
	fl.bind(h)

	f := newFrame(mode)
	f.newPhysical = true
	f.handle = h
	f.suspended = susp
	fl.push(f)
	c.emit(EventFrameOpenedNew, f)
	logger.Debug("新規物理トランザクションを開始",
		zap.String("frame_id", f.id), zap.String("mode", mode.String()))
	return f, nil
}

// complete はフレームの完了を検証してスタックから取り除く
// LIFO 順序違反と二重完了はプログラミング上の欠陥として扱い、
// フロー全体のトランザクションを破棄してフローを破損状態にする
func (c *Coordinator) complete(fl *Flow, f *Frame) error {
	if f.completed {
		c.poison(fl)
		return ErrFrameAlreadyCompleted
	}
	if fl.top() != f {
		c.poison(fl)
		return ErrOrderingViolation
	}
	fl.pop()
	f.completed = true
	return nil
}

// poison は順序違反を検知したフローを回復不能として破棄する
// 束縛中・中断中の物理リソースをすべてロールバックし、以後の操作を拒否する
func (c *Coordinator) poison(fl *Flow) {
	if fl.handle != nil {
		_ = fl.handle.Rollback()
		c.countRollback("ordering_violation")
	}
	for i := len(fl.frames) - 1; i >= 0; i-- {
		if s := fl.frames[i].suspended; s != nil {
			_ = s.handle.Rollback()
			c.countRollback("ordering_violation")
		}
	}
	fl.unbind()
	fl.frames = nil
	fl.broken = true
	logger.Error("フレーム完了順序の違反を検知したためフローを破棄しました")
}

func (c *Coordinator) emit(t EventType, f *Frame) {
	if c.hook != nil {
		c.hook(Event{Type: t, FrameID: f.id, Mode: f.mode})
	}
}

func (c *Coordinator) emitSuspended(mode PropagationMode) {
	if c.hook != nil {
		c.hook(Event{Type: EventFrameSuspended, Mode: mode})
	}
}

func (c *Coordinator) countRollback(reason string) {
	if c.metrics != nil {
		c.metrics.PhysicalRollbacksTotal.WithLabelValues(reason).Inc()
	}
}

func (c *Coordinator) countSavepoint(op string) {
	if c.metrics != nil {
		c.metrics.SavepointOperationsTotal.WithLabelValues(op).Inc()
	}
}

func (c *Coordinator) observeDuration(f *Frame, outcome string) {
	if c.metrics != nil {
		c.metrics.TransactionDuration.WithLabelValues(f.mode.String(), outcome).
			Observe(time.Since(f.startedAt).Seconds())
	}
}
