package websocket

import (
	"context"

	"github.com/luciancaetano/chathub"
	"github.com/luciancaetano/chathub/internal/metrics"
	"github.com/luciancaetano/chathub/internal/protocol"
)

// dispatch parses one inbound broadcast-mode frame and executes the
// corresponding command. Every outcome is either a state mutation plus
// fan-out or a sender-only error envelope; malformed input never crosses
// a connection boundary.
func (s *Server) dispatch(c *Conn, raw []byte) {
	cmd, err := protocol.DecodeCommand(raw)
	if err != nil {
		metrics.ProtocolErrors.Inc()
		s.log.Debug().Err(err).Str("conn_id", c.ID()).Msg("invalid command payload")
		s.reply(c, chathub.ErrInvalidMessageFormat)
		return
	}

	switch cmd.Command {
	case chathub.CmdMessage:
		s.handleMessage(c, cmd.Params)
	case chathub.CmdNick:
		s.handleNick(c, cmd.Params)
	case chathub.CmdMove:
		// Usable only when the game extension is active; otherwise the
		// command is ignored entirely, with no reply.
		if !s.gameMode {
			return
		}
		s.handleMove(c, cmd.Params)
	default:
		metrics.ProtocolErrors.Inc()
		s.log.Debug().Str("conn_id", c.ID()).Str("command", cmd.Command).Msg("invalid command")
		s.reply(c, chathub.ErrInvalidCommand)
	}
}

func (s *Server) handleMessage(c *Conn, params protocol.Params) {
	if params.Message == "" {
		metrics.ProtocolErrors.Inc()
		s.reply(c, chathub.ErrEmptyMessage)
		return
	}
	s.broadcastExcept(c, params.Message, chathub.OriginUser)
}

func (s *Server) handleNick(c *Conn, params protocol.Params) {
	if params.Nickname == "" {
		metrics.ProtocolErrors.Inc()
		s.reply(c, chathub.ErrMissingNickname)
		return
	}

	oldNick := c.Nickname()
	c.setNickname(params.Nickname)
	s.log.Info().
		Str("conn_id", c.ID()).
		Str("old_nickname", oldNick).
		Str("new_nickname", params.Nickname).
		Msg("nickname changed")

	s.broadcastExcept(c, oldNick+" changed nick to "+params.Nickname, chathub.OriginServer)
	s.reply(c, "Nick changed to "+params.Nickname)

	// The game roster tracks nicknames separately and needs a
	// structured update.
	if s.gameMode {
		s.broadcastExcept(c, protocol.GameEvent{
			Action:      chathub.ActionUpdateNick,
			OldNickname: oldNick,
			NewNickname: params.Nickname,
		}, chathub.OriginServer)
	}
}

func (s *Server) handleMove(c *Conn, params protocol.Params) {
	if params.Position == "" {
		metrics.ProtocolErrors.Inc()
		s.reply(c, chathub.ErrMissingPosition)
		return
	}

	// Store failures degrade: the move is still fanned out, with an
	// empty model if the lookup did not produce one.
	model := ""
	if s.store != nil {
		nickname := c.Nickname()
		if err := s.store.UpdatePosition(context.Background(), nickname, params.Position); err != nil {
			s.log.Warn().Err(err).Str("nickname", nickname).Msg("position update failed")
		}
		player, err := s.store.FindOne(context.Background(), nickname)
		if err != nil {
			s.log.Warn().Err(err).Str("nickname", nickname).Msg("player lookup failed")
		} else {
			model = player.Model
		}
	}

	s.broadcastExcept(c, protocol.Movement{
		Position: params.Position,
		Model:    model,
	}, chathub.OriginUser)
}

// reply sends a server-attributed envelope to one connection only.
func (s *Server) reply(c *Conn, data any) {
	if err := c.Send(context.Background(), data, chathub.OriginServer, chathub.ServerNickname); err != nil {
		s.log.Warn().Err(err).Str("conn_id", c.ID()).Msg("reply failed")
	}
}
