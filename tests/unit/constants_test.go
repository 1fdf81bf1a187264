package unit_test

import (
	"testing"

	"github.com/luciancaetano/chathub"
)

// TestConstants verifies the wire-contract strings clients depend on
func TestConstants(t *testing.T) {
	t.Parallel()

	t.Run("subprotocols", func(t *testing.T) {
		if chathub.SubprotocolBroadcast == chathub.SubprotocolEcho {
			t.Error("SubprotocolBroadcast and SubprotocolEcho should be different")
		}
		if chathub.SubprotocolBroadcast != "broadcast" {
			t.Errorf("SubprotocolBroadcast = %q, want broadcast", chathub.SubprotocolBroadcast)
		}
		if chathub.SubprotocolEcho != "echo" {
			t.Errorf("SubprotocolEcho = %q, want echo", chathub.SubprotocolEcho)
		}
	})

	t.Run("origins", func(t *testing.T) {
		if chathub.OriginServer != "server" {
			t.Errorf("OriginServer = %q, want server", chathub.OriginServer)
		}
		if chathub.OriginUser != "user" {
			t.Errorf("OriginUser = %q, want user", chathub.OriginUser)
		}
		if chathub.ServerNickname != "Server" {
			t.Errorf("ServerNickname = %q, want Server", chathub.ServerNickname)
		}
	})

	t.Run("command names", func(t *testing.T) {
		commands := map[string]string{
			chathub.CmdMessage: "message",
			chathub.CmdNick:    "nick",
			chathub.CmdMove:    "move",
		}
		for got, want := range commands {
			if got != want {
				t.Errorf("command constant = %q, want %q", got, want)
			}
		}
	})

	t.Run("command error bodies", func(t *testing.T) {
		// Exact strings: connected clients match on them.
		errorBodies := []struct {
			name  string
			value string
			want  string
		}{
			{"ErrInvalidMessageFormat", chathub.ErrInvalidMessageFormat, "Error: Invalid message format"},
			{"ErrEmptyMessage", chathub.ErrEmptyMessage, "Error: Empty message"},
			{"ErrMissingNickname", chathub.ErrMissingNickname, "Error: Missing nickname"},
			{"ErrMissingPosition", chathub.ErrMissingPosition, "Error: Missing position"},
			{"ErrInvalidCommand", chathub.ErrInvalidCommand, "Error: Invalid command."},
		}
		for _, eb := range errorBodies {
			t.Run(eb.name, func(t *testing.T) {
				if eb.value != eb.want {
					t.Errorf("%s = %q, want %q", eb.name, eb.value, eb.want)
				}
			})
		}
	})

	t.Run("internal error messages", func(t *testing.T) {
		errorMessages := []struct {
			name  string
			value string
		}{
			{"ErrConnectionClosed", chathub.ErrConnectionClosed},
			{"ErrContextCancelled", chathub.ErrContextCancelled},
			{"ErrFailedToEncode", chathub.ErrFailedToEncode},
			{"ErrServerAlreadyRunning", chathub.ErrServerAlreadyRunning},
		}
		for _, em := range errorMessages {
			t.Run(em.name, func(t *testing.T) {
				if em.value == "" {
					t.Errorf("%s should not be empty", em.name)
				}
			})
		}
	})

	t.Run("game events", func(t *testing.T) {
		if chathub.ActionRemove != "remove" {
			t.Errorf("ActionRemove = %q, want remove", chathub.ActionRemove)
		}
		if chathub.ActionUpdateNick != "update-nick" {
			t.Errorf("ActionUpdateNick = %q, want update-nick", chathub.ActionUpdateNick)
		}
	})
}
