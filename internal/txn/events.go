package txn

// EventType は Coordinator が発行する観測イベントの種別
type EventType string

const (
	EventFrameOpenedNew          EventType = "frame_opened_new"
	EventFrameJoined             EventType = "frame_joined"
	EventFrameSuspended          EventType = "frame_suspended"
	EventFrameMarkedRollbackOnly EventType = "frame_marked_rollback_only"
	EventPhysicalCommit          EventType = "physical_commit"
	EventPhysicalRollback        EventType = "physical_rollback"
	EventUnexpectedRollback      EventType = "unexpected_rollback_raised"
	EventSavepointCreated        EventType = "savepoint_created"
	EventSavepointReleased       EventType = "savepoint_released"
	EventSavepointRolledBack     EventType = "savepoint_rolled_back"
)

// Event は Coordinator の内部動作を外部へ通知する観測イベント
// トレーシング用であり、正しさには影響しない
type Event struct {
	Type    EventType
	FrameID string
	Mode    PropagationMode
}
