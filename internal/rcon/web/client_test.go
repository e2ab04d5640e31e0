package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseworks/rustwatch/internal/rcon"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startServer runs a scripted WebRCON server and returns a client
// pointed at it.
func startServer(t *testing.T, timeout time.Duration, script func(conn *websocket.Conn)) *Client {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(ts.Close)

	host, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c := New(rcon.Config{
		Endpoint:   rcon.Endpoint{Host: host, Port: port, Password: "hunter2"},
		Timeout:    timeout,
		ClientName: "rustwatch",
	}).(*Client)
	t.Cleanup(func() { c.Close() })
	return c
}

func readMsg(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	var msg message
	_, data, err := conn.ReadMessage()
	if err != nil {
		return msg
	}
	json.Unmarshal(data, &msg)
	return msg
}

func TestAuthThenCommand(t *testing.T) {
	// Auth ack arrives, then the command response with the matching
	// Identifier carries the answer.
	c := startServer(t, time.Second, func(conn *websocket.Conn) {
		auth := readMsg(t, conn)
		if auth.Type != "auth" || auth.Message != "hunter2" {
			return
		}
		conn.WriteJSON(message{Identifier: -1, Message: "authenticated"})

		cmd := readMsg(t, conn)
		// Chatter with foreign identifiers must be skipped.
		conn.WriteJSON(message{Identifier: 9999, Message: "chat spam"})
		conn.WriteJSON(message{Identifier: cmd.Identifier, Message: "hostname: X"})
	})

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Authenticate(ctx))

	out, err := c.Execute(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "hostname: X", out)
}

func TestAuthIgnoresEarlierMessages(t *testing.T) {
	c := startServer(t, time.Second, func(conn *websocket.Conn) {
		readMsg(t, conn)
		// Unsolicited frames precede the ack; none of them complete
		// the handshake.
		conn.WriteJSON(message{Identifier: 0, Message: "log line"})
		conn.WriteJSON(message{Identifier: 7, Message: "more logs"})
		conn.WriteJSON(message{Identifier: -1})
	})

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Authenticate(ctx))
	assert.Equal(t, rcon.AuthAccepted, c.state)
}

func TestCloseBeforeAckIsAuthRejected(t *testing.T) {
	c := startServer(t, time.Second, func(conn *websocket.Conn) {
		readMsg(t, conn)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad password"),
			time.Now().Add(time.Second))
	})

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	err := c.Authenticate(ctx)
	var pe *rcon.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rcon.KindAuthRejected, pe.Kind)
	assert.Equal(t, rcon.AuthRejected, c.state)
}

func TestMalformedFrameTerminatesAttempt(t *testing.T) {
	c := startServer(t, time.Second, func(conn *websocket.Conn) {
		readMsg(t, conn)
		conn.WriteMessage(websocket.TextMessage, []byte("not json {"))
	})

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	err := c.Authenticate(ctx)
	var pe *rcon.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rcon.KindMalformed, pe.Kind)
}

func TestAuthTimeout(t *testing.T) {
	c := startServer(t, 100*time.Millisecond, func(conn *websocket.Conn) {
		readMsg(t, conn)
		// Never acknowledge.
		time.Sleep(500 * time.Millisecond)
	})

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	err := c.Authenticate(ctx)
	var pe *rcon.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rcon.KindTimeout, pe.Kind)
}

func TestConnectRefused(t *testing.T) {
	c := New(rcon.Config{
		Endpoint: rcon.Endpoint{Host: "127.0.0.1", Port: 1, Password: "x"},
		Timeout:  500 * time.Millisecond,
	})

	err := c.Connect(context.Background())
	var ce *rcon.ConnError
	require.ErrorAs(t, err, &ce)

	// Close after a failed connect must be safe, twice.
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestCommandIdentifiersAreUniqueAndSkipAuthID(t *testing.T) {
	c := New(rcon.Config{}).(*Client)

	seen := map[int]bool{authIdentifier: true}
	for i := 0; i < 10; i++ {
		id := c.commandID()
		assert.GreaterOrEqual(t, id, 0)
		assert.False(t, seen[id], "identifier %d reused", id)
		seen[id] = true
	}
}
