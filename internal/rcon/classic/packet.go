package classic

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Packet types defined by the classic RCON protocol. Note that 2 is
// used for both auth responses and command requests; direction
// disambiguates.
const (
	typeAuth          = 3
	typeAuthResponse  = 2
	typeExecCommand   = 2
	typeResponseValue = 0
)

// envelopeSize is the number of bytes covered by the length prefix that
// are not body: the id and type fields plus the two terminating nulls.
const envelopeSize = 4 + 4 + 2

// maxPacketSize is the protocol's cap on the length prefix.
const maxPacketSize = 4096

var (
	errPacketTooLarge = errors.New("packet exceeds protocol maximum")
	errBadTerminator  = errors.New("packet not null-terminated")
)

// packet is one classic RCON frame. The wire layout is four
// little-endian int32s (length, id, type) followed by the body and two
// null bytes; length counts everything after itself.
type packet struct {
	id   int32
	typ  int32
	body []byte
}

func (p packet) encode() ([]byte, error) {
	length := len(p.body) + envelopeSize
	if length > maxPacketSize {
		return nil, errPacketTooLarge
	}

	buf := make([]byte, 4+length)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(length))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.id))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.typ))
	copy(buf[12:], p.body)
	// The final two bytes stay zero: body terminator plus packet
	// terminator.
	return buf, nil
}

func readPacket(r io.Reader) (packet, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return packet{}, err
	}
	length := int32(binary.LittleEndian.Uint32(header[:]))

	if length < envelopeSize {
		return packet{}, fmt.Errorf("declared packet length %d too small", length)
	}
	if length > maxPacketSize {
		return packet{}, errPacketTooLarge
	}

	rest := make([]byte, length)
	if _, err := io.ReadFull(r, rest); err != nil {
		return packet{}, err
	}

	p := packet{
		id:   int32(binary.LittleEndian.Uint32(rest[0:4])),
		typ:  int32(binary.LittleEndian.Uint32(rest[4:8])),
		body: rest[8 : length-2],
	}
	if rest[length-2] != 0 || rest[length-1] != 0 {
		return packet{}, errBadTerminator
	}
	return p, nil
}
