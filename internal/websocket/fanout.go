package websocket

import (
	"context"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/metrics"
)

// broadcastExcept delivers one envelope to every open broadcast-mode
// connection except origin. Attribution uses origin's current nickname,
// not the recipient's. Connections in a closing or closed state are
// skipped, not removed; removal belongs to the close handler. Returns the
// number of actual deliveries.
func (s *Server) broadcastExcept(origin *Conn, data any, originKind string) int {
	nickname := origin.Nickname()
	delivered := 0

	for _, c := range s.registry.snapshot() {
		if c.ID() == origin.ID() || c.Subprotocol() != chathub.SubprotocolBroadcast || !c.IsOpen() {
			continue
		}
		if err := c.Send(context.Background(), data, originKind, nickname); err != nil {
			s.log.Warn().Err(err).Str("conn_id", c.ID()).Msg("broadcast delivery failed")
			continue
		}
		delivered++
	}

	metrics.BroadcastsDelivered.Add(float64(delivered))
	s.log.Debug().
		Int("delivered", delivered).
		Int("total", s.registry.len()).
		Msg("broadcast fan-out")
	return delivered
}
