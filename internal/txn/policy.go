package txn

// Action は伝播ポリシーの解決結果を表す
// Coordinator が実際のリソース操作に変換する
type Action uint8

const (
	// ActionStartNew は新規の物理トランザクションを開始する
	ActionStartNew Action = iota

	// ActionJoin は既存の物理トランザクションに参加する（物理操作なし）
	ActionJoin

	// ActionSuspendAndStartNew は既存のトランザクションを中断し新規に開始する
	ActionSuspendAndStartNew

	// ActionSuspendAndRunWithout は既存のトランザクションを中断しトランザクションなしで実行する
	ActionSuspendAndRunWithout

	// ActionCreateSavepoint は既存のトランザクション内にセーブポイントを作成する
	ActionCreateSavepoint

	// ActionRunWithout はトランザクションなしで実行する
	ActionRunWithout
)

// String はアクションの文字列表現を返す
func (a Action) String() string {
	switch a {
	case ActionStartNew:
		return "start_new"
	case ActionJoin:
		return "join"
	case ActionSuspendAndStartNew:
		return "suspend_and_start_new"
	case ActionSuspendAndRunWithout:
		return "suspend_and_run_without"
	case ActionCreateSavepoint:
		return "create_savepoint"
	case ActionRunWithout:
		return "run_without"
	default:
		return "unknown"
	}
}

// Resolve は (伝播モード, 既存トランザクションの有無) から実行すべきアクションを決定する
// 純粋な決定表であり副作用を持たない。リソース操作は Coordinator が行う
func Resolve(mode PropagationMode, hasExisting bool) (Action, error) {
	switch mode {
	case Required:
		if hasExisting {
			return ActionJoin, nil
		}
		return ActionStartNew, nil
	case RequiresNew:
		if hasExisting {
			return ActionSuspendAndStartNew, nil
		}
		return ActionStartNew, nil
	case Supports:
		if hasExisting {
			return ActionJoin, nil
		}
		return ActionRunWithout, nil
	case NotSupported:
		if hasExisting {
			return ActionSuspendAndRunWithout, nil
		}
		return ActionRunWithout, nil
	case Mandatory:
		if hasExisting {
			return ActionJoin, nil
		}
		return 0, ErrTransactionRequired
	case Never:
		if hasExisting {
			return 0, ErrTransactionForbidden
		}
		return ActionRunWithout, nil
	case Nested:
		if hasExisting {
			return ActionCreateSavepoint, nil
		}
		return ActionStartNew, nil
	default:
		return 0, ErrUnknownPropagation
	}
}
