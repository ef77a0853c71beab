package txn

import "fmt"

// PropagationMode は論理トランザクション開始時の伝播ポリシーを表す
// 既存のトランザクションに対して新しい論理スコープがどう振る舞うかを決める
type PropagationMode uint8

const (
	// Required は既存のトランザクションがあれば参加し、なければ新規に開始する
	Required PropagationMode = iota

	// RequiresNew は既存のトランザクションを中断し、常に新規の物理トランザクションを開始する
	RequiresNew

	// Supports は既存のトランザクションがあれば参加し、なければトランザクションなしで実行する
	Supports

	// NotSupported は既存のトランザクションを中断し、トランザクションなしで実行する
	NotSupported

	// Mandatory は既存のトランザクションを必須とし、なければエラーになる
	Mandatory

	// Never はトランザクションなしを必須とし、あればエラーになる
	Never

	// Nested は既存のトランザクション内にセーブポイントを作成し、部分ロールバック可能にする
	// 既存のトランザクションがなければ新規に開始する
	Nested
)

// String は伝播モードの文字列表現を返す
func (m PropagationMode) String() string {
	switch m {
	case Required:
		return "REQUIRED"
	case RequiresNew:
		return "REQUIRES_NEW"
	case Supports:
		return "SUPPORTS"
	case NotSupported:
		return "NOT_SUPPORTED"
	case Mandatory:
		return "MANDATORY"
	case Never:
		return "NEVER"
	case Nested:
		return "NESTED"
	default:
		return fmt.Sprintf("PropagationMode(%d)", m)
	}
}

// ParsePropagation は文字列から伝播モードを解決する
// 設定ファイルやAPIリクエストからモードを受け取る際に使用する
func ParsePropagation(s string) (PropagationMode, error) {
	switch s {
	case "REQUIRED":
		return Required, nil
	case "REQUIRES_NEW":
		return RequiresNew, nil
	case "SUPPORTS":
		return Supports, nil
	case "NOT_SUPPORTED":
		return NotSupported, nil
	case "MANDATORY":
		return Mandatory, nil
	case "NEVER":
		return Never, nil
	case "NESTED":
		return Nested, nil
	default:
		return Required, fmt.Errorf("%w: %q", ErrUnknownPropagation, s)
	}
}
