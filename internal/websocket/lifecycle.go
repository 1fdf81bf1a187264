package websocket

import (
	"context"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/protocol"
)

// joinBroadcast runs the broadcast-mode entry sequence: nickname from the
// admission-time query parameter, self-acknowledgement, arrival
// announcement, and the game roster exchange when the extension is active.
func (s *Server) joinBroadcast(c *Conn, nickname string) {
	c.setNickname(nickname)
	s.log.Info().Str("conn_id", c.ID()).Str("nickname", nickname).Msg("nickname set")

	s.reply(c, "Nickname set to "+nickname)
	s.broadcastExcept(c, nickname+" has connected", chathub.OriginServer)

	if s.gameMode && s.store != nil {
		s.announcePosition(c)
		s.sendRoster(c)
	}
}

// announceDeparture fans out the leave announcement after a connection has
// been removed from the registry.
func (s *Server) announceDeparture(c *Conn) {
	nickname := c.Nickname()
	s.broadcastExcept(c, nickname+" has disconnected", chathub.OriginServer)

	if s.gameMode {
		s.broadcastExcept(c, protocol.GameEvent{
			Action:   chathub.ActionRemove,
			Nickname: nickname,
		}, chathub.OriginServer)
	}
}

// announcePosition broadcasts the newcomer's last known position to the
// active players. A player with no stored record is simply not announced.
func (s *Server) announcePosition(c *Conn) {
	player, err := s.store.FindOne(context.Background(), c.Nickname())
	if err != nil {
		s.log.Debug().Err(err).Str("nickname", c.Nickname()).Msg("no stored position for newcomer")
		return
	}
	s.broadcastExcept(c, protocol.Movement{
		Position: player.Position,
		Model:    player.Model,
	}, chathub.OriginUser)
}

// sendRoster sends every other member's stored position and model
// privately to the newcomer, attributed to that member.
func (s *Server) sendRoster(c *Conn) {
	for _, other := range s.registry.snapshot() {
		if other.ID() == c.ID() || other.Subprotocol() != chathub.SubprotocolBroadcast || !other.IsOpen() {
			continue
		}
		nickname := other.Nickname()
		player, err := s.store.FindOne(context.Background(), nickname)
		if err != nil {
			continue
		}
		if err := c.Send(context.Background(), protocol.Movement{
			Position: player.Position,
			Model:    player.Model,
		}, chathub.OriginServer, nickname); err != nil {
			s.log.Warn().Err(err).Str("conn_id", c.ID()).Msg("roster delivery failed")
			return
		}
	}
}
