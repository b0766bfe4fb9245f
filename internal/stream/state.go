package stream

// State is the lifecycle state of a streaming channel. Transitions:
// Idle → Connecting → Open → Streaming → Closing → Closed, with Failed
// reachable from Connecting, Open or Streaming on transport error.
// From Failed only Close is valid; the channel never retries on its
// own.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateStreaming
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
