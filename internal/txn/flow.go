package txn

import "context"

// Flow は1つの実行フロー（ゴルーチン単位の処理系列）に束縛されたトランザクション状態を保持する
// フロー内の Begin/Commit/Rollback は逐次的に呼ばれる前提であり、ロックは持たない
// フローをまたいで Handle やロールバック専用フラグが共有されることはない
type Flow struct {
	handle       Handle
	rollbackOnly bool
	frames       []*Frame
	savepointSeq int
	broken       bool
}

// NewFlow は新しい実行フローを作成する
func NewFlow() *Flow {
	return &Flow{}
}

// HasTransaction は物理トランザクションが束縛されているかを返す
func (fl *Flow) HasTransaction() bool {
	return fl.handle != nil
}

// Handle は現在束縛されている物理トランザクションを返す（なければ nil）
// リポジトリ実装が束縛中のトランザクションでクエリを実行するために使用する
func (fl *Flow) Handle() Handle {
	return fl.handle
}

// IsRollbackOnly は現在の物理トランザクションにロールバック専用マークが付いているかを返す
func (fl *Flow) IsRollbackOnly() bool {
	return fl.rollbackOnly
}

// Depth は未完了のフレーム数を返す
func (fl *Flow) Depth() int {
	return len(fl.frames)
}

// bind は新しい物理トランザクションを束縛する
// ロールバック専用フラグは物理トランザクションの生存期間に紐づくためリセットする
func (fl *Flow) bind(h Handle) {
	fl.handle = h
	fl.rollbackOnly = false
}

// unbind は物理トランザクションの束縛を解除し、フラグも破棄する
func (fl *Flow) unbind() {
	fl.handle = nil
	fl.rollbackOnly = false
}

// suspend は現在の束縛をフラグごと退避して解除する
func (fl *Flow) suspend() *suspendedBinding {
	s := &suspendedBinding{handle: fl.handle, rollbackOnly: fl.rollbackOnly}
	fl.handle = nil
	fl.rollbackOnly = false
	return s
}

// resume は退避された束縛をフラグごと復元する
func (fl *Flow) resume(s *suspendedBinding) {
	fl.handle = s.handle
	fl.rollbackOnly = s.rollbackOnly
}

func (fl *Flow) markRollbackOnly() {
	fl.rollbackOnly = true
}

func (fl *Flow) push(f *Frame) {
	fl.frames = append(fl.frames, f)
}

// top は最も内側の未完了フレームを返す
func (fl *Flow) top() *Frame {
	if len(fl.frames) == 0 {
		return nil
	}
	return fl.frames[len(fl.frames)-1]
}

func (fl *Flow) pop() {
	fl.frames = fl.frames[:len(fl.frames)-1]
}

func (fl *Flow) nextSavepointSeq() int {
	fl.savepointSeq++
	return fl.savepointSeq
}

type flowCtxKey struct{}

// WithFlow はコンテキストに実行フローを束縛する
func WithFlow(ctx context.Context, fl *Flow) context.Context {
	return context.WithValue(ctx, flowCtxKey{}, fl)
}

// FlowFrom はコンテキストから実行フローを取り出す
func FlowFrom(ctx context.Context) (*Flow, bool) {
	fl, ok := ctx.Value(flowCtxKey{}).(*Flow)
	return fl, ok
}

// EnsureFlow はコンテキストに実行フローがなければ新規に束縛して返す
// 既にあればそのまま返すため、入れ子の呼び出しで二重にフローが作られることはない
func EnsureFlow(ctx context.Context) context.Context {
	if _, ok := FlowFrom(ctx); ok {
		return ctx
	}
	return WithFlow(ctx, NewFlow())
}
