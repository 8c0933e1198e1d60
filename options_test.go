package zkterm

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// singleReplyDevice answers exactly one command frame with one reply frame,
// capturing the request's command code and payload for the test to inspect.
// A request that starts with the TCP envelope is answered with an envelope;
// a bare (UDP) frame is answered with a bare frame.
func singleReplyDevice(t *testing.T, conn net.Conn, replyCode int, replyPayload []byte) (gotCmd int, gotPayload []byte) {
	t.Helper()
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	buf = buf[:n]

	isTCP := testTCPTop(buf) != 0
	hdrOff := 0
	if isTCP {
		require.GreaterOrEqual(t, len(buf), 16)
		hdrOff = 8
	} else {
		require.GreaterOrEqual(t, len(buf), 8)
	}

	hdr, err := parseFrameHeader(buf[hdrOff : hdrOff+8])
	require.NoError(t, err)
	payload := append([]byte{}, buf[hdrOff+8:]...)

	frame, err := buildFrame(replyCode, hdr.SessionID, hdr.ReplyID, replyPayload)
	require.NoError(t, err)
	if isTCP {
		frame = buildTCPEnvelope(frame)
	}
	_, err = conn.Write(frame)
	require.NoError(t, err)

	return hdr.Code, payload
}

func TestGetOptionParsesKeyValueReply(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		singleReplyDevice(t, server, CMD_ACK_OK, []byte("~SerialNumber=ABC123\x00"))
	}()

	val, err := c.getOption(context.Background(), "~SerialNumber")
	require.NoError(t, err)
	require.Equal(t, "ABC123", val)
	<-done
}

func TestSetOptionSendsKeyEqualsValue(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)

	done := make(chan struct{})
	var gotPayload []byte
	go func() {
		defer close(done)
		_, gotPayload = singleReplyDevice(t, server, CMD_ACK_OK, nil)
	}()

	err := c.setOption(context.Background(), "~DeviceName", "Lobby")
	require.NoError(t, err)
	<-done
	require.Equal(t, "~DeviceName=Lobby\x00", string(gotPayload))
}

func TestReadSizesLockedDecodesFixedFields(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)

	data := make([]byte, 80)
	binary.LittleEndian.PutUint32(data[4*4:4*4+4], 12)  // UsedUsers
	binary.LittleEndian.PutUint32(data[6*4:6*4+4], 20)  // UsedFingers
	binary.LittleEndian.PutUint32(data[8*4:8*4+4], 100) // UsedRecords
	binary.LittleEndian.PutUint32(data[15*4:15*4+4], 500) // UserCap

	done := make(chan struct{})
	go func() {
		defer close(done)
		singleReplyDevice(t, server, CMD_ACK_OK, data)
	}()

	mi, err := c.readSizesLocked(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, mi.UsedUsers)
	require.Equal(t, 20, mi.UsedFingers)
	require.Equal(t, 100, mi.UsedRecords)
	require.Equal(t, 500, mi.UserCap)
	<-done
}

func TestSetTimeEncodesPayload(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)
	want := time.Date(2024, time.June, 15, 10, 30, 45, 0, time.UTC)

	done := make(chan struct{})
	var gotCmd int
	var gotPayload []byte
	go func() {
		defer close(done)
		gotCmd, gotPayload = singleReplyDevice(t, server, CMD_ACK_OK, nil)
	}()

	err := c.SetTime(context.Background(), want)
	require.NoError(t, err)
	<-done

	require.Equal(t, CMD_SET_TIME, gotCmd)
	require.Len(t, gotPayload, 4)
	require.Equal(t, encodeTime(want), binary.LittleEndian.Uint32(gotPayload))
}

func TestUnlockScalesSecondsByTen(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)

	done := make(chan struct{})
	var gotPayload []byte
	go func() {
		defer close(done)
		_, gotPayload = singleReplyDevice(t, server, CMD_ACK_OK, nil)
	}()

	err := c.Unlock(context.Background(), 3)
	require.NoError(t, err)
	<-done

	require.Equal(t, uint32(30), binary.LittleEndian.Uint32(gotPayload))
}
