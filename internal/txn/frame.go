package txn

import (
	"time"

	"github.com/google/uuid"
)

// suspendedBinding は中断された物理トランザクションの退避レコード
// ロールバック専用フラグは物理トランザクションに属するため、束縛と一緒に退避する
type suspendedBinding struct {
	handle       Handle
	rollbackOnly bool
}

// Frame は1回の Begin 呼び出しの結果を表す論理トランザクション
// 対応する Commit または Rollback でちょうど1回だけ消費され、再利用されない
type Frame struct {
	id          string
	mode        PropagationMode
	newPhysical bool
	handle      Handle
	savepoint   SavepointRef
	suspended   *suspendedBinding
	completed   bool
	startedAt   time.Time
}

func newFrame(mode PropagationMode) *Frame {
	return &Frame{
		id:        uuid.New().String(),
		mode:      mode,
		startedAt: time.Now(),
	}
}

// ID はフレームの識別子を返す（トレーシング用）
func (f *Frame) ID() string {
	return f.id
}

// Mode はこのフレームを開始した伝播モードを返す
func (f *Frame) Mode() PropagationMode {
	return f.mode
}

// IsNewPhysical はこのフレームが物理トランザクションを新規に開いたかを返す
// false のフレームは物理コミット・物理ロールバックを決して発行しない
func (f *Frame) IsNewPhysical() bool {
	return f.newPhysical
}

// HasSavepoint はこのフレームがセーブポイントによる入れ子かを返す
func (f *Frame) HasSavepoint() bool {
	return f.savepoint != nil
}

// IsCompleted はこのフレームが完了済みかを返す
func (f *Frame) IsCompleted() bool {
	return f.completed
}

// isSentinel はトランザクションなしで実行中のフレームかを返す
// 完了時に一切のリソース操作を行わない
func (f *Frame) isSentinel() bool {
	return f.handle == nil
}
