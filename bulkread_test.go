package zkterm

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeDevice services one CMD_PREPARE_BUFFER/CMD_READ_BUFFER/CMD_FREE_DATA
// exchange over a net.Pipe, standing in for a real terminal.
func fakeDevice(t *testing.T, conn net.Conn, dataset []byte) {
	t.Helper()
	readFrame := func() frameHeader {
		buf := make([]byte, 4096)
		n, err := conn.Read(buf)
		require.NoError(t, err)
		buf = buf[:n]
		require.GreaterOrEqual(t, len(buf), 16)
		hdr, err := parseFrameHeader(buf[8:16])
		require.NoError(t, err)
		return hdr
	}
	send := func(cmd, session, reply int, payload []byte) {
		frame, err := buildFrame(cmd, session, reply, payload)
		require.NoError(t, err)
		_, err = conn.Write(buildTCPEnvelope(frame))
		require.NoError(t, err)
	}

	prep := readFrame()
	sizeHdr := make([]byte, 5)
	binary.LittleEndian.PutUint32(sizeHdr[1:5], uint32(len(dataset)))
	send(CMD_ACK_OK, prep.SessionID, prep.ReplyID, sizeHdr)

	readFrame() // CMD_READ_BUFFER
	send(CMD_PREPARE_DATA, prep.SessionID, prep.ReplyID, dataset)
	send(CMD_ACK_OK, prep.SessionID, prep.ReplyID, nil)

	readFrame() // CMD_FREE_DATA
	send(CMD_ACK_OK, prep.SessionID, prep.ReplyID, nil)
}

func newTestClient(conn net.Conn) *Client {
	c := NewClient("test")
	c.log = noopLogger{}
	c.tr = &transport{conn: conn, isTCP: true, timeout: 2 * time.Second}
	c.sess = newSession()
	return c
}

// TestReadChunkHandlesStraddledTCPRead feeds the CMD_PREPARE_DATA reply
// across two separate conn.Write calls, so the first command() read only
// sees half the chunk and readChunkOnce must loop recvMore to reassemble
// the rest: for any split of a dataset across arbitrary TCP reads, the
// concatenated output must equal the original.
func TestReadChunkHandlesStraddledTCPRead(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	dataset := []byte("straddled-dataset-split-across-multiple-tcp-reads")

	done := make(chan struct{})
	go func() {
		defer close(done)

		readFrame := func() frameHeader {
			buf := make([]byte, 4096)
			n, err := server.Read(buf)
			require.NoError(t, err)
			buf = buf[:n]
			require.GreaterOrEqual(t, len(buf), 16)
			hdr, err := parseFrameHeader(buf[8:16])
			require.NoError(t, err)
			return hdr
		}
		sendWhole := func(cmd, session, reply int, payload []byte) {
			frame, err := buildFrame(cmd, session, reply, payload)
			require.NoError(t, err)
			_, err = server.Write(buildTCPEnvelope(frame))
			require.NoError(t, err)
		}

		prep := readFrame()
		sizeHdr := make([]byte, 5)
		binary.LittleEndian.PutUint32(sizeHdr[1:5], uint32(len(dataset)))
		sendWhole(CMD_ACK_OK, prep.SessionID, prep.ReplyID, sizeHdr)

		readFrame() // CMD_READ_BUFFER

		dataFrame, err := buildFrame(CMD_PREPARE_DATA, prep.SessionID, prep.ReplyID, dataset)
		require.NoError(t, err)
		envelope := buildTCPEnvelope(dataFrame)

		// Split after the 16-byte envelope-top+frame-header prefix, midway
		// through the payload, so neither write alone satisfies the chunk.
		split := 16 + len(dataset)/2
		_, err = server.Write(envelope[:split])
		require.NoError(t, err)
		_, err = server.Write(envelope[split:])
		require.NoError(t, err)

		sendWhole(CMD_ACK_OK, prep.SessionID, prep.ReplyID, nil)

		readFrame() // CMD_FREE_DATA
		sendWhole(CMD_ACK_OK, prep.SessionID, prep.ReplyID, nil)
	}()

	c := newTestClient(client)
	c.mu.Lock()
	got, err := c.readWithBuffer(context.Background(), CMD_USERTEMP_RRQ, FCT_USER, 0)
	c.mu.Unlock()
	require.NoError(t, err)
	require.Equal(t, dataset, got)

	<-done
}

func TestReadWithBufferSmallDataset(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	dataset := []byte("hello-device-dataset")

	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeDevice(t, server, dataset)
	}()

	c := newTestClient(client)
	c.mu.Lock()
	got, err := c.readWithBuffer(context.Background(), CMD_USERTEMP_RRQ, FCT_USER, 0)
	c.mu.Unlock()
	require.NoError(t, err)
	require.Equal(t, dataset, got)

	<-done
}
