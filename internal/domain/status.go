package domain

import "fmt"

type SessionStatus string

const (
	SessionStatusPickup    SessionStatus = "pickup"
	SessionStatusReturn    SessionStatus = "return"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusClosed    SessionStatus = "closed"
)

// OpenStatuses are the statuses listed on the open-rentals tab.
var OpenStatuses = []SessionStatus{
	SessionStatusPickup,
	SessionStatusReturn,
	SessionStatusCompleted,
}

// sessionTransitions maps a status to the only status it may move to.
var sessionTransitions = map[SessionStatus]SessionStatus{
	SessionStatusPickup:    SessionStatusReturn,
	SessionStatusReturn:    SessionStatusCompleted,
	SessionStatusCompleted: SessionStatusClosed,
}

func ParseSessionStatus(s string) (SessionStatus, error) {
	switch st := SessionStatus(s); st {
	case SessionStatusPickup, SessionStatusReturn, SessionStatusCompleted, SessionStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown session status %q", s)
}

// Next returns the status that follows s, or false when s is terminal.
func (s SessionStatus) Next() (SessionStatus, bool) {
	next, ok := sessionTransitions[s]
	return next, ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	next, ok := sessionTransitions[s]
	return ok && next == target
}

// PathTo returns the statuses visited when walking forward from s to target,
// excluding s itself. It returns false if target is not reachable.
func (s SessionStatus) PathTo(target SessionStatus) ([]SessionStatus, bool) {
	var path []SessionStatus
	cur := s
	for cur != target {
		next, ok := cur.Next()
		if !ok {
			return nil, false
		}
		path = append(path, next)
		cur = next
	}
	return path, true
}
