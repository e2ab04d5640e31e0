// Package classic implements the binary length-prefixed TCP variant of
// the RCON protocol.
package classic

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/pulseworks/rustwatch/internal/rcon"
)

func init() {
	rcon.Register("classic", New)
}

// responseDrainWindow bounds how long Execute keeps reading after the
// first matching response packet, to pick up continuation packets of a
// response split across frames.
const responseDrainWindow = 100 * time.Millisecond

// New returns a single-use classic RCON session. The session dials on
// Connect and is useless after Close.
func New(cfg rcon.Config) rcon.Client {
	return &Client{cfg: cfg}
}

type Client struct {
	cfg    rcon.Config
	conn   net.Conn
	state  rcon.AuthState
	seq    int32
	closed bool
}

func (c *Client) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.cfg.Endpoint.Addr())
	if err != nil {
		return &rcon.ConnError{Addr: c.cfg.Endpoint.Addr(), Err: err}
	}
	c.conn = conn
	return nil
}

func (c *Client) Authenticate(ctx context.Context) error {
	if c.conn == nil {
		return rcon.ErrNotConnected
	}
	if err := c.setDeadline(ctx); err != nil {
		return err
	}

	id := c.nextID()
	req := packet{id: id, typ: typeAuth, body: []byte(c.cfg.Endpoint.Password)}
	c.logPacket(ctx, "sending packet", req)
	if err := c.send(req); err != nil {
		return wireErr(err)
	}

	// Some servers send an empty RESPONSE_VALUE before the auth
	// response; read until the AUTH_RESPONSE arrives.
	for {
		resp, err := readPacket(c.conn)
		if err != nil {
			return wireErr(err)
		}
		c.logPacket(ctx, "received packet", resp)
		if resp.typ != typeAuthResponse {
			continue
		}
		if resp.id == -1 {
			c.state = rcon.AuthRejected
			return &rcon.ProtocolError{Kind: rcon.KindAuthRejected}
		}
		if resp.id == id {
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
	if err := c.setDeadline(ctx); err != nil {
		return "", err
	}

	id := c.nextID()
	req := packet{id: id, typ: typeExecCommand, body: []byte(command)}
	c.logPacket(ctx, "sending packet", req)
	if err := c.send(req); err != nil {
		return "", wireErr(err)
	}

	var parts []string
	for {
		resp, err := readPacket(c.conn)
		if err != nil {
			if len(parts) > 0 {
				// Drain window expired or the server ended the
				// stream; the response is complete.
				return strings.Join(parts, ""), nil
			}
			return "", wireErr(err)
		}
		c.logPacket(ctx, "received packet", resp)
		if resp.typ != typeResponseValue || resp.id != id {
			continue
		}
		parts = append(parts, string(resp.body))
		// After the first match, keep reading only briefly for
		// continuation packets.
		drain := time.Now().Add(responseDrainWindow)
		if op, ok := ctx.Deadline(); ok && op.Before(drain) {
			drain = op
		}
		if err := c.conn.SetDeadline(drain); err != nil {
			return strings.Join(parts, ""), nil
		}
	}
}

// Close tears down the underlying connection. It is idempotent and safe
// after any failure, including a Connect that never succeeded.
func (c *Client) Close() error {
	if c.closed || c.conn == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Client) send(p packet) error {
	bs, err := p.encode()
	if err != nil {
		return err
	}
	_, err = c.conn.Write(bs)
	return err
}

// setDeadline bounds the whole operation by the configured timeout,
// tightened further if the context expires sooner.
func (c *Client) setDeadline(ctx context.Context) error {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.conn.SetDeadline(deadline)
}

func (c *Client) nextID() int32 {
	c.seq++
	return c.seq
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// wireErr maps raw read/write failures onto the protocol error
// taxonomy: deadline expiry is a timeout, anything else that made it
// past Connect is malformed or torn wire data.
func wireErr(err error) error {
	if isTimeout(err) {
		return &rcon.ProtocolError{Kind: rcon.KindTimeout, Err: err}
	}
	return &rcon.ProtocolError{Kind: rcon.KindMalformed, Err: err}
}

// logPacket emits a hex dump of a frame at debug level. Outbound auth
// packets are scrubbed so the password never reaches the log.
func (c *Client) logPacket(ctx context.Context, msg string, p packet) {
	log := c.cfg.Logger
	if log == nil || !log.Handler().Enabled(ctx, slog.LevelDebug) {
		return
	}
	if p.typ == typeAuth {
		p.body = []byte("*****")
	}
	bs, err := p.encode()
	if err != nil {
		return
	}
	log.LogAttrs(ctx, slog.LevelDebug, msg, slog.String("packet", hex.EncodeToString(bs)))
}
