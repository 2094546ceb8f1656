package chat

type EventType int

const (
	EventConnect EventType = iota
	EventLine
	EventDisconnect
)

// Event is the unit of work posted to the registry goroutine. Line is only
// meaningful for EventLine.
type Event struct {
	Type    EventType
	Session *Session
	Line    string
}

var (
	ErrNicknameEmpty = errorString("nickname_empty")
	ErrNicknameTaken = errorString("nickname_taken")
)

type errorString string

func (e errorString) Error() string { return string(e) }
