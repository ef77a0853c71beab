package txn

import (
	"errors"
	"fmt"
)

// トランザクション伝播のエラー定義
var (
	// ErrPropagationMismatch は伝播ポリシーと現在のトランザクション状態の矛盾を表す
	ErrPropagationMismatch = errors.New("伝播ポリシーが現在のトランザクション状態と矛盾しています")

	// ErrTransactionRequired は MANDATORY 指定なのに既存トランザクションがない場合のエラー
	ErrTransactionRequired = fmt.Errorf("既存のトランザクションが必要です: %w", ErrPropagationMismatch)

	// ErrTransactionForbidden は NEVER 指定なのに既存トランザクションがある場合のエラー
	ErrTransactionForbidden = fmt.Errorf("トランザクション内では実行できません: %w", ErrPropagationMismatch)

	// ErrCapabilityUnsupported はリソースがセーブポイントをサポートしていない場合のエラー
	// NESTED を REQUIRED に黙って格下げすることはしない
	ErrCapabilityUnsupported = errors.New("リソースがセーブポイントをサポートしていません")

	// ErrUnexpectedRollback はコミット要求に対してロールバック専用マークにより
	// ロールバックが実行されたことを表す。内部の参加者が論理ロールバックした事実を
	// 最外殻の呼び出し元へ必ず通知するためのエラーで、握り潰してはならない
	ErrUnexpectedRollback = errors.New("コミットを要求しましたが、ロールバック専用マークのためロールバックされました")

	// ErrOrderingViolation はフレームが LIFO 順序に反して完了された場合のエラー
	ErrOrderingViolation = errors.New("フレームの完了順序が不正です")

	// ErrFrameAlreadyCompleted は同一フレームが二重に完了された場合のエラー
	ErrFrameAlreadyCompleted = fmt.Errorf("フレームは既に完了しています: %w", ErrOrderingViolation)

	// ErrFlowBroken は順序違反により破損したフローに対する操作を表す
	ErrFlowBroken = errors.New("フローは破損状態のため操作を受け付けません")

	// ErrNoFlow はコンテキストに実行フローが束縛されていない場合のエラー
	ErrNoFlow = errors.New("実行フローがコンテキストに束縛されていません")

	// ErrUnknownPropagation は未知の伝播モード文字列を表す
	ErrUnknownPropagation = errors.New("不明な伝播モードです")
)
