package websocket

import (
	"time"

	"github.com/luciancaetano/chathub/internal/metrics"
)

// runMonitor drives the shared heartbeat for the whole registry. On each
// tick a connection either proved it answered the previous probe, or it is
// forcibly terminated and removed. The pong handler re-arms the flag
// independently of the tick, so the detection window is two ticks: one
// missed response is terminal on the following tick. There is no retry and
// no backoff.
func (s *Server) runMonitor() {
	defer close(s.monitorDone)

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.monitorStop:
			return
		case <-ticker.C:
			for _, c := range s.registry.snapshot() {
				if !c.armProbe() {
					metrics.LivenessTerminations.Inc()
					s.log.Info().
						Str("conn_id", c.ID()).
						Str("remote_addr", c.RemoteAddr()).
						Msg("terminating unresponsive connection")
					c.terminate()
					s.dropConn(c)
					continue
				}
				if err := c.ping(); err != nil {
					s.log.Warn().Err(err).Str("conn_id", c.ID()).Msg("ping failed")
				}
			}
		}
	}
}
