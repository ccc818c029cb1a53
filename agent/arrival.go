package agent

// ArrivalState 到达通知状态机
type ArrivalState int

const (
	// Idle 从未设置过目标；导航此时报告“完成”也不能发送到达消息
	Idle ArrivalState = iota
	Traveling
	ArrivedNotified
)

func (s ArrivalState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Traveling:
		return "traveling"
	case ArrivedNotified:
		return "arrived_notified"
	default:
		return "unknown"
	}
}

// arrivalTracker 每个目标最多发送一次到达消息
type arrivalTracker struct {
	state ArrivalState
}

// retarget 新目标：回到 Traveling，允许下一次到达通知
func (t *arrivalTracker) retarget() { t.state = Traveling }

// pending 导航完成时是否需要发送通知
func (t *arrivalTracker) pending() bool { return t.state == Traveling }

func (t *arrivalTracker) markNotified() { t.state = ArrivedNotified }

func (t *arrivalTracker) notified() bool { return t.state == ArrivedNotified }
