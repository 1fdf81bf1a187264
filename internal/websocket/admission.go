package websocket

import (
	"net/http"

	"github.com/luciancaetano/chathub"
)

// Decision is the admission outcome for an upgrade request.
type Decision struct {
	Accepted bool
	Code     int
	Reason   string
}

func accepted() Decision {
	return Decision{Accepted: true}
}

func rejected(code int, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Negotiate selects the subprotocol for a connection from the client's
// ordered offer list. The first offer decides: an exact "broadcast" match
// selects broadcast; any other value, "echo" and unknown subprotocols
// alike, degrades to echo. This default branch is intentional: unknown
// subprotocols are not rejected. An empty offer list selects nothing and
// the connection is handled as echo after admission.
func Negotiate(offered []string) string {
	for _, p := range offered {
		switch p {
		case chathub.SubprotocolBroadcast:
			return chathub.SubprotocolBroadcast
		case chathub.SubprotocolEcho:
			// Intentional fallthrough
			fallthrough
		default:
			return chathub.SubprotocolEcho
		}
	}
	return ""
}

// admit screens an upgrade request before the handshake. Only broadcast
// connections are screened; echo and unspecified subprotocols always pass.
// The decision has no side effects: nickname assignment happens after
// acceptance, when the connection enters the registry.
func (s *Server) admit(r *http.Request, subprotocol string) Decision {
	if subprotocol != chathub.SubprotocolBroadcast {
		return accepted()
	}

	if s.allowedOrigin != "" && r.Header.Get("Origin") != s.allowedOrigin {
		return rejected(http.StatusForbidden, chathub.ReasonForbiddenOrigin)
	}

	if s.verifier != nil {
		token := r.URL.Query().Get("token")
		verification, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			// Fail closed: a broken verifier rejects, it never panics
			// through the transport layer.
			s.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("token verification failed")
			return rejected(http.StatusUnauthorized, chathub.UnauthorizedPrefix+"token verification failed")
		}
		if !verification.Accepted {
			return rejected(http.StatusUnauthorized, chathub.UnauthorizedPrefix+verification.Reason)
		}
	}

	if r.URL.Query().Get("nickname") == "" {
		return rejected(http.StatusUnauthorized, chathub.ReasonMissingNickname)
	}

	return accepted()
}
