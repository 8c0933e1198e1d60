package zkterm

import (
	"encoding/binary"
	"errors"
)

var errShortFrame = errors.New("frame shorter than 8-byte header")

// frameHeader is the 8-byte command header present on every request and
// reply, before any TCP envelope.
type frameHeader struct {
	Code      int
	Checksum  int
	SessionID int
	ReplyID   int
}

// buildFrame assembles a command frame: header with checksum computed over
// the whole frame (checksum field zeroed first), followed by payload.
func buildFrame(command, sessionID, replyID int, payload []byte) ([]byte, error) {
	if payload == nil {
		payload = []byte{}
	}

	buf, err := newBP().Pack([]string{"H", "H", "H", "H"}, []interface{}{command, 0, sessionID, replyID})
	if err != nil {
		return nil, err
	}
	buf = append(buf, payload...)

	sum, err := checksum(buf)
	if err != nil {
		return nil, err
	}

	out, err := newBP().Pack([]string{"H", "H", "H", "H"}, []interface{}{command, sum, sessionID, replyID})
	if err != nil {
		return nil, err
	}
	return append(out, payload...), nil
}

// parseFrameHeader reads the 8-byte command header from the front of b.
func parseFrameHeader(b []byte) (frameHeader, error) {
	if len(b) < 8 {
		return frameHeader{}, newErr(KindFraming, "parseFrameHeader", 0, errShortFrame)
	}
	return frameHeader{
		Code:      int(binary.LittleEndian.Uint16(b[0:2])),
		Checksum:  int(binary.LittleEndian.Uint16(b[2:4])),
		SessionID: int(binary.LittleEndian.Uint16(b[4:6])),
		ReplyID:   int(binary.LittleEndian.Uint16(b[6:8])),
	}, nil
}

// buildTCPEnvelope prepends the 8-byte length envelope TCP frames carry.
// UDP frames are sent without it.
func buildTCPEnvelope(frame []byte) []byte {
	top := make([]byte, 8)
	binary.LittleEndian.PutUint16(top[0:2], MACHINE_PREPARE_DATA_1)
	binary.LittleEndian.PutUint16(top[2:4], MACHINE_PREPARE_DATA_2)
	binary.LittleEndian.PutUint32(top[4:8], uint32(len(frame)))
	return append(top, frame...)
}

// testTCPTop reports the declared inner length of a TCP envelope, or 0 if
// the magic words don't match (too short, or not an envelope at all).
func testTCPTop(packet []byte) int {
	if len(packet) < 8 {
		return 0
	}
	h1 := binary.LittleEndian.Uint16(packet[0:2])
	h2 := binary.LittleEndian.Uint16(packet[2:4])
	if h1 != MACHINE_PREPARE_DATA_1 || h2 != MACHINE_PREPARE_DATA_2 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(packet[4:8]))
}
