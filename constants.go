package chathub

// Subprotocols negotiated during the websocket handshake.
const (
	SubprotocolBroadcast = "broadcast"
	SubprotocolEcho      = "echo"
)

// Envelope origins.
const (
	OriginServer = "server"
	OriginUser   = "user"
)

// ServerNickname attributes envelopes emitted by the hub itself.
const ServerNickname = "Server"

// Commands accepted from broadcast-mode peers.
const (
	CmdMessage = "message"
	CmdNick    = "nick"
	CmdMove    = "move"
)

// Game extension event actions.
const (
	ActionRemove     = "remove"
	ActionUpdateNick = "update-nick"
)

// User-visible protocol error strings, sent to the offending sender only.
const (
	ErrInvalidMessageFormat = "Error: Invalid message format"
	ErrEmptyMessage         = "Error: Empty message"
	ErrMissingNickname      = "Error: Missing nickname"
	ErrMissingPosition      = "Error: Missing position"
	ErrInvalidCommand       = "Error: Invalid command."
)

// Admission rejection reasons.
const (
	ReasonForbiddenOrigin = "forbidden origin"
	ReasonMissingNickname = "Unauthorized: missing nickname"

	// UnauthorizedPrefix prefixes reasons reported by the token verifier.
	UnauthorizedPrefix = "Unauthorized: "
)

// Connection errors.
const (
	ErrConnectionClosed     = "connection is closed"
	ErrContextCancelled     = "connection context cancelled"
	ErrFailedToEncode       = "failed to encode envelope"
	ErrServerAlreadyRunning = "server already running"
)

// AckBody is the fixed JSON acknowledgement answered on every non-upgrade
// HTTP request.
const AckBody = "This is a Websocket server, please use ws protocol to connect"
