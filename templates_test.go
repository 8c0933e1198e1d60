package zkterm

import (
	"context"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetUserTemplateStripsTrailingPadding(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)

	body := make([]byte, 6)
	blob := append([]byte("fingerprint-blob"), make([]byte, 6)...)
	reply := append(body, blob...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		singleReplyDevice(t, server, CMD_ACK_OK, reply)
	}()

	tpl, err := c.GetUserTemplate(context.Background(), 1, 0)
	require.NoError(t, err)
	require.True(t, tpl.Valid)
	require.Equal(t, []byte("fingerprint-blob"), tpl.Data)
	<-done
}

func TestGetUserTemplateNotFoundDoesNotRetry(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		singleReplyDevice(t, server, CMD_ACK_ERROR, nil)
	}()

	_, err := c.GetUserTemplate(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrNotFound)
	<-done
}

func TestDeleteUserTemplateUsesUIDFormOverUDP(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newTestClient(clientConn)
	c.tr.isTCP = false

	done := make(chan struct{})
	var gotCmd int
	var gotPayload []byte
	go func() {
		defer close(done)
		gotCmd, gotPayload = singleReplyDevice(t, server, CMD_ACK_OK, nil)
	}()

	err := c.DeleteUserTemplate(context.Background(), 7, "7", 0)
	require.NoError(t, err)
	<-done

	require.Equal(t, CMD_DELETE_USERTEMP, gotCmd)
	require.Equal(t, uint16(7), binary.LittleEndian.Uint16(gotPayload[0:2]))
}
