// Package web implements the JSON-over-WebSocket variant of the RCON
// protocol.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulseworks/rustwatch/internal/rcon"
)

func init() {
	rcon.Register("web", New)
}

// authIdentifier is the fixed Identifier of the auth request frame.
const authIdentifier = 1

// authAckIdentifier marks the server frame that completes the auth
// handshake. The protocol does not distinguish accepted from rejected
// credentials at this step; a bad password surfaces later as a command
// round that silently fails or a closed socket.
const authAckIdentifier = -1

// message is a WebRCON frame. Servers attach extra fields (stack
// traces, message types) which are deliberately ignored.
type message struct {
	Identifier int    `json:"Identifier"`
	Message    string `json:"Message"`
	Name       string `json:"Name,omitempty"`
	Type       string `json:"Type,omitempty"`
}

// New returns a single-use WebRCON session.
func New(cfg rcon.Config) rcon.Client {
	return &Client{cfg: cfg, nextID: authIdentifier + 1}
}

type Client struct {
	cfg    rcon.Config
	conn   *websocket.Conn
	state  rcon.AuthState
	nextID int
	closed bool
}

func (c *Client) Connect(ctx context.Context) error {
	scheme := "ws"
	if c.cfg.Endpoint.Secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: c.cfg.Endpoint.Addr()}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.Timeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return &rcon.ConnError{Addr: u.String(), Err: err}
	}
	c.conn = conn
	return nil
}

// Authenticate sends the auth frame and waits for the server's
// Identifier -1 acknowledgment. Frames arriving before that signal are
// discarded; a socket close before the signal means the server dropped
// the session and is reported as a rejected credential.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.conn == nil {
		return rcon.ErrNotConnected
	}

	req := message{
		Identifier: authIdentifier,
		Message:    c.cfg.Endpoint.Password,
		Name:       c.cfg.ClientName,
		Type:       "auth",
	}
	if err := c.writeFrame(ctx, req); err != nil {
		return &rcon.ProtocolError{Kind: rcon.KindTimeout, Err: err}
	}

	for {
		msg, err := c.readFrame(ctx)
		if err != nil {
			var pe *rcon.ProtocolError
			if errors.As(err, &pe) {
				return err
			}
			if isTimeout(err) {
				return &rcon.ProtocolError{Kind: rcon.KindTimeout, Err: err}
			}
			// The socket closed (or otherwise died) before the auth
			// acknowledgment: the server dropped the session.
			c.state = rcon.AuthRejected
			return &rcon.ProtocolError{Kind: rcon.KindAuthRejected, Err: err}
		}
		if msg.Identifier == authAckIdentifier {
			c.state = rcon.AuthAccepted
			return nil
		}
	}
}

func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	if c.conn == nil {
		return "", rcon.ErrNotConnected
	}
	if c.state != rcon.AuthAccepted {
		return "", rcon.ErrNotAuthenticated
	}

	id := c.commandID()
	req := message{
		Identifier: id,
		Message:    command,
		Name:       c.cfg.ClientName,
		Type:       "command",
	}
	if err := c.writeFrame(ctx, req); err != nil {
		return "", &rcon.ProtocolError{Kind: rcon.KindTimeout, Err: err}
	}

	// The response is the first frame whose Identifier matches the
	// chosen command id; everything else on the socket is discarded.
	for {
		msg, err := c.readFrame(ctx)
		if err != nil {
			var pe *rcon.ProtocolError
			if errors.As(err, &pe) {
				return "", err
			}
			if isTimeout(err) {
				return "", &rcon.ProtocolError{Kind: rcon.KindTimeout, Err: err}
			}
			return "", &rcon.ConnError{Addr: c.cfg.Endpoint.Addr(), Err: err}
		}
		if msg.Identifier == id {
			return msg.Message, nil
		}
	}
}

// Close is idempotent and safe after any failure.
func (c *Client) Close() error {
	if c.closed || c.conn == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	deadline := time.Now().Add(time.Second)
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}

func (c *Client) writeFrame(ctx context.Context, msg message) error {
	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

func (c *Client) readFrame(ctx context.Context) (message, error) {
	if err := c.conn.SetReadDeadline(c.deadline(ctx)); err != nil {
		return message{}, err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return message{}, err
	}
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return message{}, &rcon.ProtocolError{Kind: rcon.KindMalformed, Err: err}
	}
	return msg, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

// commandID hands out non-negative identifiers distinct from the auth
// identifier and from each other within the session.
func (c *Client) commandID() int {
	id := c.nextID
	c.nextID++
	return id
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
