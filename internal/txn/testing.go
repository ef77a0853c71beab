package txn

import (
	"context"
	"fmt"
)

// FakeProvider はテスト用の Provider 実装
// 開いた Handle をすべて記録し、物理操作の検証に使う
type FakeProvider struct {
	Handles []*FakeHandle

	// OpenErr を設定すると Open が失敗する
	OpenErr error

	// WithoutSavepoints を true にするとセーブポイント非対応の Handle を返す
	WithoutSavepoints bool
}

// Open は新しい FakeHandle を開く
func (p *FakeProvider) Open(_ context.Context) (Handle, error) {
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	h := &FakeHandle{id: len(p.Handles) + 1}
	p.Handles = append(p.Handles, h)
	if p.WithoutSavepoints {
		return plainHandle{h}, nil
	}
	return h, nil
}

// Last は最後に開かれた Handle を返す
func (p *FakeProvider) Last() *FakeHandle {
	if len(p.Handles) == 0 {
		return nil
	}
	return p.Handles[len(p.Handles)-1]
}

// FakeHandle はテスト用の物理トランザクション
type FakeHandle struct {
	id int

	Committed  bool
	RolledBack bool

	// セーブポイント操作の記録（作成順）
	Savepoints   []string
	Released     []string
	RolledBackTo []string

	CommitErr   error
	RollbackErr error
}

func (h *FakeHandle) Commit() error {
	if h.CommitErr != nil {
		return h.CommitErr
	}
	h.Committed = true
	return nil
}

func (h *FakeHandle) Rollback() error {
	if h.RollbackErr != nil {
		return h.RollbackErr
	}
	h.RolledBack = true
	return nil
}

type fakeSavepointRef struct{ name string }

func (r fakeSavepointRef) Name() string { return r.name }

func (h *FakeHandle) CreateSavepoint(_ context.Context, name string) (SavepointRef, error) {
	h.Savepoints = append(h.Savepoints, name)
	return fakeSavepointRef{name: name}, nil
}

func (h *FakeHandle) RollbackTo(_ context.Context, ref SavepointRef) error {
	h.RolledBackTo = append(h.RolledBackTo, ref.Name())
	return nil
}

func (h *FakeHandle) Release(_ context.Context, ref SavepointRef) error {
	h.Released = append(h.Released, ref.Name())
	return nil
}

func (h *FakeHandle) String() string {
	return fmt.Sprintf("FakeHandle(%d)", h.id)
}

// plainHandle は FakeHandle からセーブポイント能力を隠す
// NESTED の能力エラーを検証するために使う
type plainHandle struct{ h *FakeHandle }

func (p plainHandle) Commit() error   { return p.h.Commit() }
func (p plainHandle) Rollback() error { return p.h.Rollback() }
