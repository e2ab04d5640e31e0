package rcon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	called := false
	Register("fake", func(cfg Config) Client {
		called = true
		return nil
	})

	f, err := NewFactory("fake")
	require.NoError(t, err)
	f(Config{})
	assert.True(t, called)
}

func TestRegistryUnknownTransport(t *testing.T) {
	_, err := NewFactory("carrier-pigeon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestErrorKindLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ProtocolError{Kind: KindAuthRejected}, "auth_rejected"},
		{&ProtocolError{Kind: KindMalformed}, "malformed"},
		{&ProtocolError{Kind: KindTimeout}, "timeout"},
		{&ConnError{Addr: "x:1"}, "connection"},
		{errors.New("anything else"), "other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorKind(tc.err))
	}
}

func TestProtocolErrorWrapsCause(t *testing.T) {
	cause := errors.New("read tcp: i/o timeout")
	err := &ProtocolError{Kind: KindTimeout, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "timeout")
}
