package classic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketWireLayout(t *testing.T) {
	p := packet{id: 7, typ: typeAuth, body: []byte("pw")}

	bs, err := p.encode()
	require.NoError(t, err)

	// length | id | type | body | two nulls, all little-endian.
	want := []byte{
		12, 0, 0, 0,
		7, 0, 0, 0,
		3, 0, 0, 0,
		'p', 'w',
		0, 0,
	}
	assert.Equal(t, want, bs)

	back, err := readPacket(bytes.NewReader(bs))
	require.NoError(t, err)
	assert.Equal(t, p.id, back.id)
	assert.Equal(t, p.typ, back.typ)
	assert.Equal(t, p.body, back.body)
}

func TestEncodeRejectsOversizedBody(t *testing.T) {
	p := packet{id: 1, typ: typeExecCommand, body: make([]byte, maxPacketSize)}
	_, err := p.encode()
	require.ErrorIs(t, err, errPacketTooLarge)
}

func TestReadPacketRejectsBadTerminator(t *testing.T) {
	p := packet{id: 1, typ: typeResponseValue, body: []byte("ok")}
	bs, err := p.encode()
	require.NoError(t, err)
	bs[len(bs)-1] = 0xff

	_, err = readPacket(bytes.NewReader(bs))
	require.ErrorIs(t, err, errBadTerminator)
}

func TestReadPacketRejectsShortLength(t *testing.T) {
	_, err := readPacket(bytes.NewReader([]byte{4, 0, 0, 0, 1, 2, 3, 4}))
	require.Error(t, err)
}
