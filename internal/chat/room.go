package chat

import (
	"sort"
	"strings"
	"unicode"
)

// outcome tells the registry what to do with the session after a dispatch.
type outcome int

const (
	sessionContinue outcome = iota
	sessionEnd
)

type handlerFunc func(s *Session, rest string) outcome

// room is one stage of the protocol state machine: it owns a member set and
// the verbs legal in that stage. All methods run on the registry goroutine.
type room interface {
	add(s *Session)
	remove(s *Session)
	dispatch(s *Session, line string) outcome
}

// baseRoom carries the member list, the verb table, and the dispatch logic
// shared by every variant. Members keep join order.
type baseRoom struct {
	reg      *Registry
	members  []*Session
	handlers map[string]handlerFunc
	unknown  func(s *Session, verb string)
}

// dispatch trims the line, drops it if empty, splits verb from the rest on
// the first whitespace run, and runs the matching handler. Unmapped verbs go
// through the variant's unknown-command path.
func (b *baseRoom) dispatch(s *Session, line string) outcome {
	line = strings.TrimSpace(line)
	if line == "" {
		return sessionContinue
	}
	verb, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		verb, rest = line[:i], strings.TrimSpace(line[i:])
	}
	h, ok := b.handlers[verb]
	if !ok {
		CommandsTotal.WithLabelValues("unknown").Inc()
		b.unknown(s, verb)
		return sessionContinue
	}
	CommandsTotal.WithLabelValues(verb).Inc()
	return h(s, rest)
}

func (b *baseRoom) addMember(s *Session) {
	b.members = append(b.members, s)
}

func (b *baseRoom) removeMember(s *Session) {
	for i, m := range b.members {
		if m == s {
			b.members = append(b.members[:i], b.members[i+1:]...)
			return
		}
	}
}

// broadcast queues line for every member, in join order. Delivery is the
// writer goroutine's problem.
func (b *baseRoom) broadcast(line string) {
	for _, m := range b.members {
		b.reg.sendLine(m, line)
	}
}

func (b *baseRoom) broadcastExcept(skip *Session, line string) {
	for _, m := range b.members {
		if m == skip {
			continue
		}
		b.reg.sendLine(m, line)
	}
}

func doLogout(*Session, string) outcome { return sessionEnd }

const listRule = "--------------------"

// loginRoom holds a single unauthenticated session. Unknown input gets the
// usage hint instead of an error.
type loginRoom struct {
	baseRoom
}

func newLoginRoom(reg *Registry) *loginRoom {
	r := &loginRoom{baseRoom: baseRoom{reg: reg}}
	r.handlers = map[string]handlerFunc{
		"login":  r.doLogin,
		"logout": doLogout,
	}
	r.unknown = func(s *Session, _ string) { r.hint(s) }
	return r
}

func (r *loginRoom) add(s *Session) {
	r.addMember(s)
	r.reg.sendLine(s, "Welcome to "+r.reg.name+"!")
	r.hint(s)
}

func (r *loginRoom) remove(s *Session) { r.removeMember(s) }

func (r *loginRoom) hint(s *Session) {
	r.reg.sendLine(s, `Please log in using "login <nick>" or log out with "logout"`)
}

func (r *loginRoom) doLogin(s *Session, name string) outcome {
	switch err := r.reg.checkName(name); err {
	case nil:
		s.name = name
		s.enter(r.reg.main)
	case ErrNicknameEmpty:
		r.reg.sendLine(s, "Please enter a nickname")
	case ErrNicknameTaken:
		r.reg.sendLine(s, "The name "+name+" is taken. Please try again")
	}
	return sessionContinue
}

// chatRoom is the singleton main room shared by every logged-in session.
type chatRoom struct {
	baseRoom
}

func newChatRoom(reg *Registry) *chatRoom {
	r := &chatRoom{baseRoom: baseRoom{reg: reg}}
	r.handlers = map[string]handlerFunc{
		"say":    r.doSay,
		"look":   r.doLook,
		"who":    r.doWho,
		"logout": doLogout,
	}
	r.unknown = func(s *Session, verb string) {
		reg.sendLine(s, "Unknown command: "+verb)
	}
	return r
}

// add announces the join to the sessions already present, then makes the
// session a member and binds its nickname in the registry. The announce
// comes first so the joiner never sees its own entry line.
func (r *chatRoom) add(s *Session) {
	r.broadcast(s.name + " has entered the room.")
	r.addMember(s)
	r.reg.users[s.name] = s
	LoggedInUsers.Set(float64(len(r.reg.users)))
	r.reg.logger.Info("user entered room", "name", s.name)
}

// remove drops the member first, then tells the rest, so the leaver never
// sees its own exit line.
func (r *chatRoom) remove(s *Session) {
	r.removeMember(s)
	r.broadcast(s.name + " has left the room.")
	r.reg.logger.Info("user left room", "name", s.name)
}

func (r *chatRoom) doSay(s *Session, text string) outcome {
	r.broadcastExcept(s, s.name+": "+text)
	return sessionContinue
}

func (r *chatRoom) doLook(s *Session, _ string) outcome {
	r.reg.sendLine(s, "The following are in this room:")
	r.reg.sendLine(s, listRule)
	for _, m := range r.members {
		r.reg.sendLine(s, m.name)
	}
	r.reg.sendLine(s, listRule)
	return sessionContinue
}

func (r *chatRoom) doWho(s *Session, _ string) outcome {
	names := make([]string, 0, len(r.reg.users))
	for name := range r.reg.users {
		names = append(names, name)
	}
	sort.Strings(names)
	r.reg.sendLine(s, "The following are logged in:")
	r.reg.sendLine(s, listRule)
	for _, name := range names {
		r.reg.sendLine(s, name)
	}
	r.reg.sendLine(s, listRule)
	return sessionContinue
}

// logoutRoom is terminal: it exists to run its entry side effects, after
// which the connection is torn down. farewell is false when the transport is
// already gone and there is no one left to thank.
type logoutRoom struct {
	baseRoom
	farewell bool
}

func newLogoutRoom(reg *Registry, farewell bool) *logoutRoom {
	// No verb table: the registry stops dispatching lines once a session is
	// closed, so this room only ever runs its entry side effects.
	return &logoutRoom{baseRoom: baseRoom{reg: reg}, farewell: farewell}
}

func (r *logoutRoom) add(s *Session) {
	r.addMember(s)
	if r.farewell {
		r.reg.sendLine(s, "Thank you for using "+r.reg.name+"! Goodbye!")
	}
	// Best effort: a session that never logged in has no entry to remove.
	delete(r.reg.users, s.name)
	LoggedInUsers.Set(float64(len(r.reg.users)))
}

func (r *logoutRoom) remove(s *Session) { r.removeMember(s) }
