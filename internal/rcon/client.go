package rcon

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// Endpoint identifies the game server's remote-administration interface.
// It is immutable for the lifetime of the process.
type Endpoint struct {
	Host     string
	Port     int
	Secure   bool // web transport only: wss instead of ws
	Password string
}

func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Config carries everything a client needs for one session.
type Config struct {
	Endpoint Endpoint

	// Timeout bounds each individual operation (connect, authenticate,
	// one command round trip).
	Timeout time.Duration

	// ClientName is sent by transports that identify the client to the
	// server (the web transport includes it in every frame).
	ClientName string

	// Logger receives debug-level wire logging. Nil disables it.
	Logger *slog.Logger
}

// Client is a single-use RCON session. A client owns exactly one
// underlying connection and supports exactly one
// connect -> authenticate -> execute-one-command -> close sequence.
// Clients are never reused across attempts; a fresh one is constructed
// for every probe attempt.
//
// Close is idempotent and safe to call after any failure, including a
// failed Connect.
type Client interface {
	Connect(ctx context.Context) error
	Authenticate(ctx context.Context) error
	Execute(ctx context.Context, command string) (string, error)
	Close() error
}

// AuthState tracks the session's authentication progress. Transitions
// are monotonic: once authenticated or rejected a session never moves
// back to pending.
type AuthState int

const (
	AuthPending AuthState = iota
	AuthAccepted
	AuthRejected
)

func (s AuthState) String() string {
	switch s {
	case AuthPending:
		return "pending"
	case AuthAccepted:
		return "authenticated"
	case AuthRejected:
		return "rejected"
	}
	return "unknown"
}
