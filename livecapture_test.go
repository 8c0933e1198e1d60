package zkterm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildEvent10(uid int, status, punch byte) []byte {
	b := make([]byte, 10)
	binary.LittleEndian.PutUint16(b[0:2], uint16(uid))
	b[2] = status
	b[3] = punch
	copy(b[4:10], []byte{24, 6, 15, 10, 30, 45})
	return b
}

func TestDrainEventBufferTwoFramesInOrder(t *testing.T) {
	c := &Client{log: noopLogger{}}
	c.eventBuf = append(buildEvent10(5, 1, 0), buildEvent10(6, 0, 1)...)

	c.drainEventBuffer()

	require.Len(t, c.eventQ, 2)
	require.Equal(t, 5, c.eventQ[0].UID)
	require.Equal(t, 6, c.eventQ[1].UID)
	require.Empty(t, c.eventBuf)
}

func TestDrainEventBufferUnrecognizedLengthLeavesBufferAlone(t *testing.T) {
	c := &Client{log: noopLogger{}}
	c.eventBuf = make([]byte, 11)

	c.drainEventBuffer()

	require.Empty(t, c.eventQ)
	require.Len(t, c.eventBuf, 11)
}
