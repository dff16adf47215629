package server

import (
	"log/slog"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/log"
)

// Navigator publishes the engine's hand-offs to connected app shells as
// navigation messages on the WebSocket stream. It is created before the
// server so the engine can hold it, and bound once the server exists
type Navigator struct {
	server *Server
}

// NewNavigator creates the navigation collaborator; Bind attaches it to
// the server whose WebSocket connections carry its signals
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Bind attaches the navigator to its server. Signals published before
// binding are dropped
func (n *Navigator) Bind(s *Server) {
	n.server = s
}

func (n *Navigator) Back(id api.SessionID) {
	n.publish(id, api.NavigateBack)
}

func (n *Navigator) OpenSignIn(id api.SessionID) {
	n.publish(id, api.NavigateSignIn)
}

// CompleteOnboarding replaces the shell's root with the main screen and
// pushes the permissions prompt on top of it
func (n *Navigator) CompleteOnboarding(id api.SessionID) {
	n.publish(id, api.NavigateMain)
	n.publish(id, api.NavigatePermissions)
}

func (n *Navigator) publish(id api.SessionID, action string) {
	s := n.server
	if s == nil {
		return
	}

	signal := &api.NavigationSignal{
		SessionID: id,
		Action:    action,
	}

	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		select {
		case c.signals <- signal:
		default:
			slog.Warn("Dropping navigation signal for slow client",
				log.SessionID(id),
				slog.String("action", action))
		}
	}
}
