package chat

import "net"

// Session is the server-side state bound to one client connection. Conn and
// Out are touched by the reader and writer goroutines; name, room and closed
// belong to the registry goroutine and must not be read outside it.
type Session struct {
	Conn net.Conn
	Out  chan string // outbound lines drained by the writer goroutine

	name   string
	room   room
	closed bool
}

// enter moves the session into b: leave the current room, repoint, join.
// This ordering keeps the session in at most one member set at any instant
// and puts leave broadcasts before join broadcasts. Registry goroutine only.
func (s *Session) enter(b room) {
	if s.room != nil {
		s.room.remove(s)
	}
	s.room = b
	b.add(s)
}

// HandleSession reads the connection until it fails, framing bytes into lines
// and posting each to the registry. It owns no protocol state beyond the
// framer; lines are interpreted on the registry goroutine. A stopped registry
// ends the loop.
func HandleSession(s *Session, reg *Registry) {
	var framer LineFramer
	buf := make([]byte, 4096)
	for {
		n, err := s.Conn.Read(buf)
		if n > 0 {
			for _, line := range framer.Feed(buf[:n]) {
				if !reg.post(Event{Type: EventLine, Session: s, Line: line}) {
					return
				}
			}
		}
		if err != nil {
			reg.post(Event{Type: EventDisconnect, Session: s})
			return
		}
	}
}
